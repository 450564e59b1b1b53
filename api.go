/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Seednode/impostor/game"
	"github.com/julienschmidt/httprouter"
)

const maxBodySize = 4 << 10

// app serializes every request onto the game manager, which is not safe for
// concurrent use.
type app struct {
	cfg *Config

	mu    sync.Mutex
	games *game.Manager
	hub   *Hub
}

func newApp(cfg *Config, store game.Store, words game.WordBank, rng game.Source) (*app, error) {
	a := &app{cfg: cfg}
	a.hub = newHub(a.locked)

	policy, err := game.ParsePolicy(cfg.policy)
	if err != nil {
		return nil, err
	}

	m, err := game.NewManager(game.Options{
		Store:         store,
		Words:         words,
		Source:        rng,
		Logger:        log.New(logWriter{cfg: cfg}, "", 0),
		DefaultPolicy: policy,
		RosterSink:    a,
	})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.games = m
	m.Load()

	logf(cfg, "GAMES: Loaded %s session with %d players, policy %s", m.State(), len(m.Players()), m.Policy())

	return a, nil
}

func (a *app) locked(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return fn()
}

// RenderRoster forwards roster changes to connected screens. It runs with
// a.mu held.
func (a *app) RenderRoster(players []game.Player, callbacks game.RosterCallbacks) {
	a.hub.publish(a.snapshotLocked(players), callbacks)
}

type stateResponse struct {
	Type       string        `json:"type"`
	State      game.State    `json:"state"`
	Policy     game.Policy   `json:"policy"`
	Players    []game.Player `json:"players"`
	WordsUsed  int           `json:"words_used"`
	WordsTotal int           `json:"words_total"`
}

func (a *app) snapshotLocked(players []game.Player) stateResponse {
	return stateResponse{
		Type:       "state",
		State:      a.games.State(),
		Policy:     a.games.Policy(),
		Players:    players,
		WordsUsed:  len(a.games.UsedWords()),
		WordsTotal: len(a.games.Words()),
	}
}

func (a *app) snapshot() stateResponse {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.snapshotLocked(a.games.Players())
}

type nameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	Before int `json:"before"`
}

type policyRequest struct {
	Policy string `json:"policy"`
}

type policyResponse struct {
	Policy game.Policy `json:"policy"`
}

type revealResponse struct {
	Player     game.Player `json:"player"`
	Role       game.Role   `json:"role"`
	SecretWord *game.Word  `json:"secret_word"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return nil
}

func playerID(p httprouter.Params) (int, error) {
	id, err := strconv.Atoi(p.ByName("id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid player id %q", errBadRequest, p.ByName("id"))
	}

	return id, nil
}

func served(cfg *Config, r *http.Request, what string, written int, startTime time.Time) {
	logf(cfg, "SERVE: %s (%s) to %s in %s",
		what,
		humanReadableSize(int64(written)),
		realIP(r),
		time.Since(startTime).Round(time.Microsecond),
	)
}

func serveState(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "State", written, startTime)
	}
}

func serveAddPlayer(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req nameRequest
		if err := decodeBody(r, &req); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		var p game.Player
		err := a.locked(func() (err error) {
			p, err = a.games.AddPlayer(req.Name)
			return err
		})
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusCreated, p, errs)

		served(a.cfg, r, "Added player "+p.Name, written, startTime)
	}
}

func serveRenamePlayer(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, err := playerID(ps)
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		var req nameRequest
		if err := decodeBody(r, &req); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		if err := a.locked(func() error { return a.games.RenamePlayer(id, req.Name) }); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "Renamed player "+strconv.Itoa(id), written, startTime)
	}
}

func serveRemovePlayer(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, err := playerID(ps)
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		if err := a.locked(func() error { return a.games.RemovePlayer(id) }); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "Removed player "+strconv.Itoa(id), written, startTime)
	}
}

func serveMovePlayer(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, err := playerID(ps)
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		var req moveRequest
		if err := decodeBody(r, &req); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		if err := a.locked(func() error { return a.games.ReorderPlayer(id, req.Before) }); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "Moved player "+strconv.Itoa(id), written, startTime)
	}
}

func serveGetPolicy(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var p game.Policy
		_ = a.locked(func() error {
			p = a.games.Policy()
			return nil
		})

		written := writeJSON(a.cfg, w, http.StatusOK, policyResponse{Policy: p}, errs)

		served(a.cfg, r, "Policy", written, startTime)
	}
}

func serveSetPolicy(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req policyRequest
		if err := decodeBody(r, &req); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		var p game.Policy
		err := a.locked(func() (err error) {
			p, err = a.games.SetPolicy(req.Policy)
			if err == nil {
				a.hub.publish(a.snapshotLocked(a.games.Players()), a.games.Callbacks())
			}
			return err
		})
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, policyResponse{Policy: p}, errs)

		served(a.cfg, r, "Set policy "+p.String(), written, startTime)
	}
}

// serveStartSession uses the policy in the request body, falling back to the
// stored preference when none is given.
func serveStartSession(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req policyRequest
		if r.ContentLength != 0 {
			if err := decodeBody(r, &req); err != nil {
				serveError(a.cfg, w, r, err, errs)
				return
			}
		}

		err := a.locked(func() error {
			policy := a.games.Policy()
			if req.Policy != "" {
				p, err := game.ParsePolicy(req.Policy)
				if err != nil {
					return err
				}
				policy = p
			}

			_, err := a.games.StartSession(policy)
			return err
		})
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusCreated, a.snapshot(), errs)

		served(a.cfg, r, "Started session", written, startTime)
	}
}

func serveEndSession(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		if err := a.locked(a.games.EndSession); err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "Ended session", written, startTime)
	}
}

func serveReveal(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, err := playerID(ps)
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		var rev game.Reveal
		err = a.locked(func() (err error) {
			rev, err = a.games.RevealRole(id)
			return err
		})
		if err != nil {
			serveError(a.cfg, w, r, err, errs)
			return
		}

		written := writeJSON(a.cfg, w, http.StatusOK, revealResponse{
			Player:     rev.Player,
			Role:       rev.Role,
			SecretWord: rev.SecretWord,
		}, errs)

		served(a.cfg, r, "Reveal for player "+strconv.Itoa(id), written, startTime)
	}
}

func serveWipe(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		_ = a.locked(func() error {
			a.games.WipeAll()
			return nil
		})

		written := writeJSON(a.cfg, w, http.StatusOK, a.snapshot(), errs)

		served(a.cfg, r, "Wiped all records", written, startTime)
	}
}

// registerImpostorGame sets up routes so that:
//   - $prefix/api/...          → JSON roster, policy and session callbacks
//   - $prefix/reveal/:id       → HTML card for one player
//   - $prefix/ws               → WebSocket roster feed
func registerImpostorGame(cfg *Config, a *app, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/api/state", serveState(a, errs))

	mux.POST(cfg.prefix+"/api/players", serveAddPlayer(a, errs))
	mux.PUT(cfg.prefix+"/api/players/:id", serveRenamePlayer(a, errs))
	mux.DELETE(cfg.prefix+"/api/players/:id", serveRemovePlayer(a, errs))
	mux.POST(cfg.prefix+"/api/players/:id/move", serveMovePlayer(a, errs))

	mux.GET(cfg.prefix+"/api/policy", serveGetPolicy(a, errs))
	mux.PUT(cfg.prefix+"/api/policy", serveSetPolicy(a, errs))

	mux.POST(cfg.prefix+"/api/session", serveStartSession(a, errs))
	mux.DELETE(cfg.prefix+"/api/session", serveEndSession(a, errs))
	mux.GET(cfg.prefix+"/api/session/reveal/:id", serveReveal(a, errs))

	mux.POST(cfg.prefix+"/api/wipe", serveWipe(a, errs))

	mux.GET(cfg.prefix+"/reveal/:id", serveRevealPage(a, errs))

	mux.GET(cfg.prefix+"/ws", serveWS(a))
}
