/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"testing"
)

// seqSource replays a fixed sequence, reduced modulo n.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

// recordingStore counts writes on top of a MemoryStore.
type recordingStore struct {
	*MemoryStore
	writes int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore()}
}

func (s *recordingStore) Set(key, value string) error {
	s.writes++
	return s.MemoryStore.Set(key, value)
}

func (s *recordingStore) Remove(key string) error {
	s.writes++
	return s.MemoryStore.Remove(key)
}

// brokenStore fails every call.
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(string) (string, bool, error) { return "", false, errBroken }
func (brokenStore) Set(string, string) error         { return errBroken }
func (brokenStore) Remove(string) error              { return errBroken }
func (brokenStore) Clear() error                     { return errBroken }

type rosterSinkFunc func(players []Player, cb RosterCallbacks)

func (f rosterSinkFunc) RenderRoster(players []Player, cb RosterCallbacks) {
	f(players, cb)
}

type revealRecorder struct {
	title, body string
}

func (r *revealRecorder) RenderReveal(title, body string) {
	r.title, r.body = title, body
}

func newTestManager(t *testing.T, store Store, names ...string) *Manager {
	t.Helper()

	m, err := NewManager(Options{
		Store:  store,
		Words:  DefaultWords,
		Source: NewSeededSource(42),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, name := range names {
		if _, err := m.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%q): %v", name, err)
		}
	}

	return m
}
