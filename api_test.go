/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Seednode/impostor/game"
)

type testServer struct {
	app    *app
	router http.Handler
}

func newTestServer(t *testing.T, store game.Store) *testServer {
	t.Helper()

	cfg := &Config{port: 8080, database: ":memory:", policy: "1"}

	a, err := newApp(cfg, store, game.DefaultWords, game.NewSeededSource(1))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	errs := make(chan error, 64)
	t.Cleanup(func() { close(errs) })
	go func() {
		for range errs {
		}
	}()

	return &testServer{app: a, router: newRouter(cfg, a, errs)}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) expect(t *testing.T, method, path, body string, status int) *httptest.ResponseRecorder {
	t.Helper()

	rec := s.do(t, method, path, body)
	if rec.Code != status {
		t.Fatalf("%s %s = %d %s, want %d", method, path, rec.Code, rec.Body.String(), status)
	}

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}

	return v
}

func (s *testServer) addPlayers(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		s.expect(t, http.MethodPost, "/api/players", `{"name":"`+name+`"}`, http.StatusCreated)
	}
}

func TestAPIRosterEditing(t *testing.T) {
	s := newTestServer(t, game.NewMemoryStore())

	rec := s.expect(t, http.MethodPost, "/api/players", `{"name":"  ana "}`, http.StatusCreated)
	if p := decode[game.Player](t, rec); p.ID != 1 || p.Name != "ANA" {
		t.Errorf("added %+v, want {1 ANA}", p)
	}

	s.addPlayers(t, "luis", "eli")

	s.expect(t, http.MethodPost, "/api/players", `{"name":"Ana"}`, http.StatusConflict)
	s.expect(t, http.MethodPost, "/api/players", `{"name":"   "}`, http.StatusBadRequest)
	s.expect(t, http.MethodPost, "/api/players", `{"name":"ABCDEFGHIJKLMNOP"}`, http.StatusBadRequest)
	s.expect(t, http.MethodPost, "/api/players", `{"nombre":"X"}`, http.StatusBadRequest)

	rec = s.expect(t, http.MethodPut, "/api/players/2", `{"name":"Lucho"}`, http.StatusOK)
	st := decode[stateResponse](t, rec)
	if st.Players[1].Name != "LUCHO" {
		t.Errorf("after rename players = %v", st.Players)
	}

	s.expect(t, http.MethodPut, "/api/players/1", `{"name":"eli"}`, http.StatusConflict)
	s.expect(t, http.MethodPut, "/api/players/9", `{"name":"ZOE"}`, http.StatusNotFound)
	s.expect(t, http.MethodPut, "/api/players/abc", `{"name":"ZOE"}`, http.StatusBadRequest)

	rec = s.expect(t, http.MethodPost, "/api/players/3/move", `{"before":1}`, http.StatusOK)
	st = decode[stateResponse](t, rec)
	if got := names(st.Players); got != "ELI,ANA,LUCHO" {
		t.Errorf("after move order = %s", got)
	}

	rec = s.expect(t, http.MethodDelete, "/api/players/1", "", http.StatusOK)
	st = decode[stateResponse](t, rec)
	if got := names(st.Players); got != "ELI,LUCHO" {
		t.Errorf("after remove order = %s", got)
	}

	s.expect(t, http.MethodDelete, "/api/players/1", "", http.StatusOK)
}

func names(players []game.Player) string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}

	return strings.Join(out, ",")
}

func TestAPISessionFlow(t *testing.T) {
	s := newTestServer(t, game.NewMemoryStore())

	s.addPlayers(t, "ana", "luis")
	s.expect(t, http.MethodPost, "/api/session", "", http.StatusUnprocessableEntity)
	s.expect(t, http.MethodGet, "/api/session/reveal/1", "", http.StatusConflict)
	s.expect(t, http.MethodDelete, "/api/session", "", http.StatusConflict)

	s.addPlayers(t, "eli")

	rec := s.expect(t, http.MethodPost, "/api/session", "", http.StatusCreated)
	st := decode[stateResponse](t, rec)
	if st.State != game.StateActive || st.WordsUsed != 1 {
		t.Errorf("started state = %+v", st)
	}

	s.expect(t, http.MethodPost, "/api/session", "", http.StatusConflict)
	s.expect(t, http.MethodPost, "/api/players", `{"name":"zoe"}`, http.StatusConflict)
	s.expect(t, http.MethodDelete, "/api/players/1", "", http.StatusConflict)

	var (
		impostors int
		word      string
	)
	for id := 1; id <= 3; id++ {
		rev := decode[revealResponse](t, s.expect(t, http.MethodGet, "/api/session/reveal/"+strconv.Itoa(id), "", http.StatusOK))

		switch rev.Role {
		case game.RoleImpostor:
			impostors++
			if rev.SecretWord != nil {
				t.Errorf("impostor %s was shown %v", rev.Player.Name, rev.SecretWord)
			}
		case game.RoleWordHolder:
			if rev.SecretWord == nil {
				t.Fatalf("word holder %s got no word", rev.Player.Name)
			}
			if word != "" && rev.SecretWord.Text != word {
				t.Errorf("word holders disagree: %q vs %q", word, rev.SecretWord.Text)
			}
			word = rev.SecretWord.Text
		default:
			t.Errorf("unexpected role %q", rev.Role)
		}
	}

	if impostors != 1 {
		t.Errorf("impostors = %d, want 1", impostors)
	}

	s.expect(t, http.MethodGet, "/api/session/reveal/7", "", http.StatusNotFound)

	rec = s.expect(t, http.MethodDelete, "/api/session", "", http.StatusOK)
	if st := decode[stateResponse](t, rec); st.State != game.StateIdle || len(st.Players) != 3 {
		t.Errorf("ended state = %+v", st)
	}
}

func TestAPIStartWithPolicy(t *testing.T) {
	s := newTestServer(t, game.NewMemoryStore())

	s.addPlayers(t, "ana", "luis", "eli", "zoe")

	s.expect(t, http.MethodPost, "/api/session", `{"policy":"lots"}`, http.StatusBadRequest)
	s.expect(t, http.MethodPost, "/api/session", `{"policy":"9"}`, http.StatusCreated)

	for id := 1; id <= 4; id++ {
		rev := decode[revealResponse](t, s.expect(t, http.MethodGet, "/api/session/reveal/"+strconv.Itoa(id), "", http.StatusOK))
		if rev.Role != game.RoleImpostor {
			t.Errorf("player %d is %s, want everyone impostor when the count exceeds the roster", id, rev.Role)
		}
	}
}

func TestAPIPolicy(t *testing.T) {
	store := game.NewMemoryStore()
	s := newTestServer(t, store)

	if p := decode[policyResponse](t, s.expect(t, http.MethodGet, "/api/policy", "", http.StatusOK)); p.Policy != "1" {
		t.Errorf("default policy = %q", p.Policy)
	}

	s.expect(t, http.MethodPut, "/api/policy", `{"policy":"0"}`, http.StatusBadRequest)
	s.expect(t, http.MethodPut, "/api/policy", `{"policy":"sometimes"}`, http.StatusBadRequest)

	rec := s.expect(t, http.MethodPut, "/api/policy", `{"policy":"random_50"}`, http.StatusOK)
	if p := decode[policyResponse](t, rec); p.Policy != game.PolicyRandom50 {
		t.Errorf("set policy = %q", p.Policy)
	}

	if v, ok, _ := store.Get(game.KeyPolicy); !ok || !strings.Contains(v, "RANDOM_50") {
		t.Errorf("stored policy = %q, %v", v, ok)
	}

	// a fresh app over the same store picks the preference back up
	s = newTestServer(t, store)
	if p := decode[policyResponse](t, s.expect(t, http.MethodGet, "/api/policy", "", http.StatusOK)); p.Policy != game.PolicyRandom50 {
		t.Errorf("reloaded policy = %q", p.Policy)
	}
}

func TestAPIWipe(t *testing.T) {
	store := game.NewMemoryStore()
	s := newTestServer(t, store)

	s.addPlayers(t, "ana", "luis", "eli")
	s.expect(t, http.MethodPost, "/api/session", "", http.StatusCreated)

	rec := s.expect(t, http.MethodPost, "/api/wipe", "", http.StatusOK)
	st := decode[stateResponse](t, rec)
	if st.State != game.StateIdle || len(st.Players) != 0 || st.WordsUsed != 0 {
		t.Errorf("after wipe = %+v", st)
	}

	if keys := store.Keys(); len(keys) != 0 {
		t.Errorf("store keys after wipe = %v", keys)
	}
}

func TestAPISessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impostor.db")

	store, err := openStore(path)
	if err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, store)
	s.addPlayers(t, "ana", "luis", "eli")
	s.expect(t, http.MethodPost, "/api/session", "", http.StatusCreated)

	before := make(map[int]revealResponse)
	for id := 1; id <= 3; id++ {
		before[id] = decode[revealResponse](t, s.expect(t, http.MethodGet, "/api/session/reveal/"+strconv.Itoa(id), "", http.StatusOK))
	}
	store.Close()

	store, err = openStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s = newTestServer(t, store)

	st := decode[stateResponse](t, s.expect(t, http.MethodGet, "/api/state", "", http.StatusOK))
	if st.State != game.StateActive || names(st.Players) != "ANA,LUIS,ELI" {
		t.Fatalf("restored state = %+v", st)
	}

	for id := 1; id <= 3; id++ {
		after := decode[revealResponse](t, s.expect(t, http.MethodGet, "/api/session/reveal/"+strconv.Itoa(id), "", http.StatusOK))
		if after.Role != before[id].Role || after.Player.Name != before[id].Player.Name {
			t.Errorf("player %d: restored %+v, had %+v", id, after, before[id])
		}
		if (after.SecretWord == nil) != (before[id].SecretWord == nil) {
			t.Errorf("player %d: secret word visibility changed", id)
		}
		if after.SecretWord != nil && after.SecretWord.Text != before[id].SecretWord.Text {
			t.Errorf("player %d: word %q, had %q", id, after.SecretWord.Text, before[id].SecretWord.Text)
		}
	}
}

func TestRevealPage(t *testing.T) {
	s := newTestServer(t, game.NewMemoryStore())

	s.addPlayers(t, "ana", "luis", "eli")

	rec := s.expect(t, http.MethodGet, "/reveal/1", "", http.StatusConflict)
	if !strings.Contains(rec.Body.String(), "No card") {
		t.Errorf("idle reveal page = %s", rec.Body.String())
	}

	s.expect(t, http.MethodPost, "/api/session", "", http.StatusCreated)

	home := s.expect(t, http.MethodGet, "/", "", http.StatusOK).Body.String()
	if !strings.Contains(home, `href="/reveal/2"`) {
		t.Errorf("home page has no reveal links: %s", home)
	}

	rec = s.expect(t, http.MethodGet, "/reveal/2", "", http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "PLAYER LUIS - IMPOSTOR!") && !strings.Contains(body, "PLAYER LUIS - WORD HOLDER!") {
		t.Errorf("reveal page = %s", body)
	}

	s.expect(t, http.MethodGet, "/reveal/8", "", http.StatusNotFound)
	s.expect(t, http.MethodGet, "/reveal/x", "", http.StatusNotFound)
}

func TestAncillaryRoutes(t *testing.T) {
	s := newTestServer(t, game.NewMemoryStore())

	if body := s.expect(t, http.MethodGet, "/healthz", "", http.StatusOK).Body.String(); body != "Ok\n" {
		t.Errorf("healthz = %q", body)
	}

	if body := s.expect(t, http.MethodGet, "/version", "", http.StatusOK).Body.String(); !strings.Contains(body, releaseVersion) {
		t.Errorf("version = %q", body)
	}

	if body := s.expect(t, http.MethodGet, "/robots.txt", "", http.StatusOK).Body.String(); !strings.Contains(body, "Disallow: /") {
		t.Errorf("robots = %q", body)
	}

	rec := s.expect(t, http.MethodGet, "/qr", "", http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("qr body is not a png")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrPlayerNotFound, http.StatusNotFound},
		{game.ErrNameInvalid, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{game.ErrRosterFull, http.StatusConflict},
		{game.ErrSessionActive, http.StatusConflict},
		{game.ErrInsufficientPlayers, http.StatusUnprocessableEntity},
		{&game.StorageError{Op: "set", Key: game.KeyRoster, Err: game.ErrEmptyWordBank}, http.StatusInternalServerError},
		{game.ErrEmptyWordBank, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
