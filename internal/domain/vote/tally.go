package vote

// Tally is the aggregated view of a ballot.
type Tally struct {
	Counts   map[string]int      `json:"counts"`
	ByDevice map[string][]string `json:"byDevice"`
}

// Aggregate counts votes per song and lists the voting devices of each song
// in arrival order. It never caches: every call reflects the ballot as it is.
func Aggregate(b *Ballot) Tally {
	t := Tally{
		Counts:   make(map[string]int),
		ByDevice: make(map[string][]string),
	}
	if b == nil {
		return t
	}
	for _, device := range b.order {
		song := b.songs[device]
		t.Counts[song]++
		t.ByDevice[song] = append(t.ByDevice[song], device)
	}
	return t
}
