package vote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ballot maps each device to the song it currently votes for.
// A device holds at most one vote; casting again overwrites it.
// order keeps devices sorted by the time they last changed their vote.
type Ballot struct {
	songs map[string]string
	order []string
}

func NewBallot() *Ballot {
	return &Ballot{songs: make(map[string]string)}
}

// Cast records deviceID's vote for songID and reports whether anything changed.
func (b *Ballot) Cast(deviceID, songID string) bool {
	if prev, ok := b.songs[deviceID]; ok {
		if prev == songID {
			return false
		}
		b.removeFromOrder(deviceID)
	}
	b.songs[deviceID] = songID
	b.order = append(b.order, deviceID)
	return true
}

func (b *Ballot) SongFor(deviceID string) (string, bool) {
	s, ok := b.songs[deviceID]
	return s, ok
}

func (b *Ballot) Len() int {
	return len(b.order)
}

// Devices returns device ids in vote arrival order.
func (b *Ballot) Devices() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Ballot) Clear() {
	b.songs = make(map[string]string)
	b.order = nil
}

func (b *Ballot) Clone() *Ballot {
	c := &Ballot{
		songs: make(map[string]string, len(b.songs)),
		order: make([]string, len(b.order)),
	}
	for k, v := range b.songs {
		c.songs[k] = v
	}
	copy(c.order, b.order)
	return c
}

func (b *Ballot) removeFromOrder(deviceID string) {
	for i, d := range b.order {
		if d == deviceID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

// MarshalJSON writes the ballot as a flat {"device": "song"} object whose key
// order is the vote arrival order.
func (b *Ballot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, device := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(device)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.songs[device])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat {"device": "song"} object, keeping key order.
// A JSON null yields an empty ballot.
func (b *Ballot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	fresh := NewBallot()
	if tok == nil {
		*b = *fresh
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ballot: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		device, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ballot: unexpected key %v", keyTok)
		}
		var song string
		if err := dec.Decode(&song); err != nil {
			return fmt.Errorf("ballot: device %q: %w", device, err)
		}
		if device == "" || song == "" {
			continue
		}
		fresh.Cast(device, song)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = *fresh
	return nil
}
