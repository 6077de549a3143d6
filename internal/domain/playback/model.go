package playback

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Status is the playback state of one song.
type Status int

const (
	NotPlayed Status = iota
	Played
	NowPlaying
)

var ErrUnknownStatus = errors.New("unknown playback status")

func (s Status) String() string {
	switch s {
	case Played:
		return "played"
	case NowPlaying:
		return "now_playing"
	default:
		return "not_played"
	}
}

func ParseStatus(v string) (Status, error) {
	switch v {
	case "played":
		return Played, nil
	case "now_playing":
		return NowPlaying, nil
	case "", "not_played", "deselected":
		return NotPlayed, nil
	}
	return NotPlayed, fmt.Errorf("%w: %q", ErrUnknownStatus, v)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// States holds the playback status of every song that has left NotPlayed.
// At most one song is NowPlaying at any time.
type States struct {
	songs map[string]Status
}

func NewStates() *States {
	return &States{songs: make(map[string]Status)}
}

func (s *States) Status(songID string) Status {
	return s.songs[songID]
}

func (s *States) NowPlaying() (string, bool) {
	for id, st := range s.songs {
		if st == NowPlaying {
			return id, true
		}
	}
	return "", false
}

func (s *States) Len() int {
	return len(s.songs)
}

// Advance makes songID the only NowPlaying song, demoting the previous one to
// Played. It reports false when songID was already playing.
func (s *States) Advance(songID string) bool {
	changed := false
	for id, st := range s.songs {
		switch st {
		case NowPlaying:
			if id != songID {
				s.songs[id] = Played
				changed = true
			}
		case Played, NotPlayed:
		}
	}
	if s.songs[songID] != NowPlaying {
		s.songs[songID] = NowPlaying
		changed = true
	}
	return changed
}

func (s *States) Reset() {
	s.songs = make(map[string]Status)
}

func (s *States) Clone() *States {
	c := &States{songs: make(map[string]Status, len(s.songs))}
	for k, v := range s.songs {
		c.songs[k] = v
	}
	return c
}

// Map returns the wire view: song id to "now_playing" or "played".
func (s *States) Map() map[string]string {
	out := make(map[string]string, len(s.songs))
	for id, st := range s.songs {
		out[id] = st.String()
	}
	return out
}

func (s *States) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.songs)
}

// UnmarshalJSON accepts the flat {"song": "status"} document and the older
// {"now_playing": "song"|null, "played": ["song", ...]} layout.
func (s *States) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fresh := NewStates()
	if isLegacy(raw) {
		if err := fresh.fromLegacy(raw); err != nil {
			return err
		}
		*s = *fresh
		return nil
	}
	// sorted, so a document with several now_playing entries always keeps
	// the same one (the last id)
	for _, id := range slices.Sorted(maps.Keys(raw)) {
		v := raw[id]
		var st Status
		if err := json.Unmarshal(v, &st); err != nil {
			return fmt.Errorf("song %q: %w", id, err)
		}
		if st == NotPlayed {
			continue
		}
		if st == NowPlaying {
			fresh.Advance(id)
			continue
		}
		if fresh.songs[id] != NowPlaying {
			fresh.songs[id] = Played
		}
	}
	*s = *fresh
	return nil
}

func isLegacy(raw map[string]json.RawMessage) bool {
	if p, ok := raw["played"]; ok && len(p) > 0 && p[0] == '[' {
		return true
	}
	if np, ok := raw["now_playing"]; ok && string(np) == "null" {
		return true
	}
	return false
}

func (s *States) fromLegacy(raw map[string]json.RawMessage) error {
	var played []string
	if p, ok := raw["played"]; ok {
		if err := json.Unmarshal(p, &played); err != nil {
			return fmt.Errorf("legacy played list: %w", err)
		}
	}
	for _, id := range played {
		if id != "" {
			s.songs[id] = Played
		}
	}
	var now *string
	if np, ok := raw["now_playing"]; ok {
		if err := json.Unmarshal(np, &now); err != nil {
			return fmt.Errorf("legacy now_playing: %w", err)
		}
	}
	if now != nil && *now != "" {
		s.Advance(*now)
	}
	return nil
}
