package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"songvote/internal/domain/admin"
	"songvote/internal/domain/playback"
	"songvote/internal/domain/vote"
	jwtpkg "songvote/internal/platform/jwt"
	"songvote/internal/repository/file"
	"songvote/internal/session"
	"songvote/internal/state"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []session.Event
}

func (p *recordingPublisher) Publish(ev session.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) kinds() []session.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]session.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

type testEnv struct {
	server *httptest.Server
	coord  *session.Coordinator
	store  *state.Store
	pub    *recordingPublisher
}

func setupServer(t *testing.T, adminSvc *admin.Service) *testEnv {
	t.Helper()

	repo, err := file.NewDocumentRepo(t.TempDir())
	if err != nil {
		t.Fatalf("file repo: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := state.NewStore(repo, logger)
	pub := &recordingPublisher{}
	coord := session.NewCoordinator(vote.NewBallot(), playback.NewStates(), store, pub, logger)

	server := httptest.NewServer(NewRouter(Deps{
		Coordinator: coord,
		Loader:      store,
		Admin:       adminSvc,
		Store:       store,
	}))
	t.Cleanup(server.Close)

	return &testEnv{server: server, coord: coord, store: store, pub: pub}
}

func newAdminService(t *testing.T, password string) *admin.Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return admin.NewService(string(hash), jwtpkg.NewManager("test-secret", "songvote"), time.Hour)
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := setupServer(t, nil)

	resp := doJSON(t, http.MethodGet, env.server.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, env.server.URL+"/ready", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status: %d", resp.StatusCode)
	}
}

func TestAdvanceMissingSongID(t *testing.T) {
	env := setupServer(t, nil)

	for _, body := range []any{map[string]string{}, map[string]string{"songId": ""}, nil} {
		resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/playback/now-playing", "", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, resp.StatusCode)
		}
		got := decode[map[string]string](t, resp)
		if got["error"] != "missing_song_id" || got["message"] == "" {
			t.Fatalf("unexpected error body %v", got)
		}
	}

	if kinds := env.pub.kinds(); len(kinds) != 0 {
		t.Fatalf("expected no broadcast, got %v", kinds)
	}
	if env.coord.Snapshot().States["songA"] != "" {
		t.Fatalf("state must not change")
	}
}

func TestAdvanceAndSnapshot(t *testing.T) {
	env := setupServer(t, nil)

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/playback/now-playing", "", map[string]string{"songId": "songA"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance status: %d", resp.StatusCode)
	}
	got := decode[advanceResponse](t, resp)
	if got.Status != "ok" || got.NowPlaying != "songA" {
		t.Fatalf("unexpected body %+v", got)
	}

	resp = doJSON(t, http.MethodPost, env.server.URL+"/votes/now_playing", "", map[string]string{"songId": "songB"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("legacy advance status: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, env.server.URL+"/api/v1/session", "", nil)
	snap := decode[session.Snapshot](t, resp)
	if snap.States["songA"] != "played" || snap.States["songB"] != "now_playing" {
		t.Fatalf("unexpected states %v", snap.States)
	}

	if kinds := env.pub.kinds(); len(kinds) != 2 {
		t.Fatalf("expected two updates, got %v", kinds)
	}

	// the durable copy follows
	if st := env.store.LoadStates(t.Context()); st.Status("songB") != playback.NowPlaying {
		t.Fatalf("expected persisted now playing")
	}
}

func TestCountsEndpoints(t *testing.T) {
	env := setupServer(t, nil)
	ctx := t.Context()

	for _, v := range [][2]string{{"d1", "songA"}, {"d2", "songA"}, {"d3", "songB"}} {
		if _, err := env.coord.CastVote(ctx, v[0], v[1]); err != nil {
			t.Fatalf("cast vote: %v", err)
		}
	}

	for _, path := range []string{"/api/v1/votes/counts", "/votes/counts.json"} {
		resp := doJSON(t, http.MethodGet, env.server.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status: %d", path, resp.StatusCode)
		}
		counts := decode[map[string]int](t, resp)
		if counts["songA"] != 2 || counts["songB"] != 1 || len(counts) != 2 {
			t.Fatalf("%s unexpected counts %v", path, counts)
		}
	}
}

func TestRawVotesKeepsVoteOrder(t *testing.T) {
	env := setupServer(t, nil)
	ctx := t.Context()
	for _, v := range [][2]string{{"d2", "songB"}, {"d1", "songA"}} {
		if _, err := env.coord.CastVote(ctx, v[0], v[1]); err != nil {
			t.Fatalf("cast vote: %v", err)
		}
	}

	resp := doJSON(t, http.MethodGet, env.server.URL+"/core/votes.json", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := strings.TrimSpace(string(body)); got != `{"d2":"songB","d1":"songA"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestResetBroadcastsUpdateThenReset(t *testing.T) {
	env := setupServer(t, nil)
	ctx := t.Context()
	if _, err := env.coord.CastVote(ctx, "d1", "songA"); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/session/reset", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status: %d", resp.StatusCode)
	}
	if got := decode[statusResponse](t, resp); got.Status != "ok" {
		t.Fatalf("unexpected body %+v", got)
	}

	kinds := env.pub.kinds()
	want := []session.EventKind{session.EventUpdate, session.EventUpdate, session.EventSessionReset}
	if strings.Join(kindStrings(kinds), ",") != strings.Join(kindStrings(want), ",") {
		t.Fatalf("unexpected events %v", kinds)
	}

	resp = doJSON(t, http.MethodGet, env.server.URL+"/votes/reset", "", nil)
	if got := decode[statusResponse](t, resp); got.Status != "ok" || got.Message != "Votes reset" {
		t.Fatalf("unexpected legacy body %+v", got)
	}

	snap := env.coord.Snapshot()
	if len(snap.Counts) != 0 || len(snap.ByDevice) != 0 || len(snap.States) != 0 {
		t.Fatalf("expected empty session, got %+v", snap)
	}
}

func TestReloadReadsDurableState(t *testing.T) {
	env := setupServer(t, nil)
	ctx := t.Context()

	stored := vote.NewBallot()
	stored.Cast("d9", "songZ")
	if err := env.store.SaveVotes(ctx, stored); err != nil {
		t.Fatalf("save votes: %v", err)
	}

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/session/reload", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload status: %d", resp.StatusCode)
	}
	snap := decode[session.Snapshot](t, resp)
	if snap.Counts["songZ"] != 1 {
		t.Fatalf("unexpected counts %v", snap.Counts)
	}
}

func TestAdminGuard(t *testing.T) {
	env := setupServer(t, newAdminService(t, "stage-pass"))
	url := env.server.URL + "/api/v1/playback/now-playing"
	body := map[string]string{"songId": "songA"}

	resp := doJSON(t, http.MethodPost, url, "", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, env.server.URL+"/votes/reset", "bogus", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/admin/login", "", loginRequest{Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/admin/login", "", loginRequest{Password: "stage-pass"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	login := decode[loginResponse](t, resp)
	if login.Token == "" {
		t.Fatalf("token missing")
	}

	resp = doJSON(t, http.MethodPost, url, login.Token, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	// reads stay public
	resp = doJSON(t, http.MethodGet, env.server.URL+"/api/v1/session", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status: %d", resp.StatusCode)
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	env := setupServer(t, admin.NewService("", nil, 0))

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/admin/login", "", loginRequest{Password: "x"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func kindStrings(kinds []session.EventKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
