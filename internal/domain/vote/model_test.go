package vote

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCastOverwritesPreviousVote(t *testing.T) {
	b := NewBallot()
	if !b.Cast("d1", "songA") {
		t.Fatalf("expected first vote to change the ballot")
	}
	if b.Cast("d1", "songA") {
		t.Fatalf("expected identical vote to be a no-op")
	}
	if !b.Cast("d1", "songB") {
		t.Fatalf("expected changed vote to change the ballot")
	}
	if b.Len() != 1 {
		t.Fatalf("expected one vote per device, got %d", b.Len())
	}
	if s, _ := b.SongFor("d1"); s != "songB" {
		t.Fatalf("expected songB, got %q", s)
	}
}

func TestChangedVoteMovesDeviceToEnd(t *testing.T) {
	b := NewBallot()
	b.Cast("d1", "a")
	b.Cast("d2", "a")
	b.Cast("d1", "b")
	if got := b.Devices(); !reflect.DeepEqual(got, []string{"d2", "d1"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestBallotJSONKeepsOrder(t *testing.T) {
	b := NewBallot()
	b.Cast("zeta", "s1")
	b.Cast("alpha", "s2")
	b.Cast("mid", "s1")

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"zeta":"s1","alpha":"s2","mid":"s1"}` {
		t.Fatalf("unexpected json %s", data)
	}

	decoded := NewBallot()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Devices(), b.Devices()) {
		t.Fatalf("order lost: %v", decoded.Devices())
	}
}

func TestBallotUnmarshalRejectsNonStringValues(t *testing.T) {
	b := NewBallot()
	if err := json.Unmarshal([]byte(`{"d1": 3}`), b); err == nil {
		t.Fatalf("expected error for numeric song id")
	}
	if err := json.Unmarshal([]byte(`["d1"]`), b); err == nil {
		t.Fatalf("expected error for array document")
	}
}

func TestBallotUnmarshalNull(t *testing.T) {
	b := NewBallot()
	b.Cast("d1", "a")
	if err := json.Unmarshal([]byte(`null`), b); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty ballot, got %d", b.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBallot()
	b.Cast("d1", "a")
	c := b.Clone()
	c.Cast("d2", "b")
	if b.Len() != 1 || c.Len() != 2 {
		t.Fatalf("clone shares state: %d %d", b.Len(), c.Len())
	}
}
