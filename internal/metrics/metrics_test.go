package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersBeforeAndAfterRegister(t *testing.T) {
	// helpers must be safe to call before Register
	IncVote()
	IncBroadcast("update")

	Register()
	Register()

	before := testutil.ToFloat64(votesCastTotal)
	IncVote()
	if got := testutil.ToFloat64(votesCastTotal); got != before+1 {
		t.Fatalf("expected votes counter %v, got %v", before+1, got)
	}

	IncBroadcast("session_reset")
	if got := testutil.ToFloat64(broadcastsTotal.WithLabelValues("session_reset")); got != 1 {
		t.Fatalf("expected one session_reset broadcast, got %v", got)
	}

	SetSubscribers(3)
	if got := testutil.ToFloat64(subscribers); got != 3 {
		t.Fatalf("expected 3 subscribers, got %v", got)
	}
}
