/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
)

// State of the session state machine.
type State string

const (
	StateIdle   State = "IDLE"
	StateActive State = "ACTIVE"
)

func (s State) String() string {
	return string(s)
}

// GameSession is the frozen result of starting a game: the secret word and
// each player's role, keyed by normalized name.
type GameSession struct {
	SecretWord *Word

	names       []string
	assignments map[string]Role
}

func newGameSession(word Word, players []Player, roles RoleVector) *GameSession {
	s := &GameSession{
		SecretWord:  &word,
		names:       make([]string, len(players)),
		assignments: make(map[string]Role, len(players)),
	}

	for i, p := range players {
		s.names[i] = p.Name
		s.assignments[p.Name] = roles[i]
	}

	return s
}

// RoleOf returns the role assigned to name.
func (s *GameSession) RoleOf(name string) (Role, bool) {
	r, ok := s.assignments[name]
	return r, ok
}

// Names returns the players in snapshot order.
func (s *GameSession) Names() []string {
	return slices.Clone(s.names)
}

func (s *GameSession) Assignments() map[string]Role {
	return maps.Clone(s.assignments)
}

// ImpostorCount returns how many players were dealt the impostor role.
func (s *GameSession) ImpostorCount() int {
	n := 0
	for _, r := range s.assignments {
		if r.IsImpostor() {
			n++
		}
	}

	return n
}

// sessionRecord is the persisted shape of an active session.
type sessionRecord struct {
	SecretWord string            `json:"secretWord"`
	Players    []map[string]Role `json:"players"`
}

func (s *GameSession) record() sessionRecord {
	rec := sessionRecord{
		SecretWord: s.SecretWord.Text,
		Players:    make([]map[string]Role, len(s.names)),
	}

	for i, name := range s.names {
		rec.Players[i] = map[string]Role{name: s.assignments[name]}
	}

	return rec
}

// Options configures a Manager. Store and Words are required; the rest have
// defaults.
type Options struct {
	Store         Store
	Words         WordBank
	Source        Source
	Logger        *log.Logger
	DefaultPolicy Policy
	RosterSink    RosterSink
}

// Manager owns the live roster, the active session and the word history, and
// keeps their persisted copies in step. It is not safe for concurrent use.
type Manager struct {
	store  Store
	words  WordBank
	rng    Source
	logger *log.Logger
	sink   RosterSink

	defaultPolicy Policy
	policy        Policy

	roster  *Roster
	history *HistoryTracker
	session *GameSession
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}

	if err := opts.Words.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		store:         opts.Store,
		words:         slices.Clone(opts.Words),
		rng:           opts.Source,
		logger:        opts.Logger,
		sink:          opts.RosterSink,
		defaultPolicy: DefaultPolicy,
		roster:        &Roster{},
		history:       NewHistoryTracker(nil),
	}

	if m.rng == nil {
		rng, err := NewSource()
		if err != nil {
			return nil, err
		}
		m.rng = rng
	}

	if m.logger == nil {
		m.logger = log.New(io.Discard, "", 0)
	}

	if opts.DefaultPolicy != "" {
		p, err := ParsePolicy(string(opts.DefaultPolicy))
		if err != nil {
			return nil, fmt.Errorf("default policy %q: %w", opts.DefaultPolicy, err)
		}
		m.defaultPolicy = p
	}
	m.policy = m.defaultPolicy

	return m, nil
}

// Load replaces in-memory state with the persisted records: word history,
// impostor policy, then either the active session or the bare roster.
func (m *Manager) Load() {
	var used []Word
	if m.load(KeyUsedWords, &used) {
		m.history = NewHistoryTracker(used)
	} else {
		m.history = NewHistoryTracker(nil)
	}

	m.policy = m.defaultPolicy
	if raw, ok := m.get(KeyPolicy); ok {
		p, err := ParsePolicy(raw)
		if err != nil {
			m.discard(KeyPolicy, err)
		} else {
			m.policy = p
		}
	}

	if m.RestoreSession() {
		return
	}

	m.session = nil
	m.roster = &Roster{}

	var players []Player
	if m.load(KeyRoster, &players) {
		r, err := NewRoster(players)
		if err != nil {
			m.discard(KeyRoster, err)
		} else {
			m.roster = r
		}
	}

	m.render()
}

func (m *Manager) State() State {
	if m.session != nil {
		return StateActive
	}

	return StateIdle
}

// Session returns the active session, or nil when idle.
func (m *Manager) Session() *GameSession {
	return m.session
}

func (m *Manager) Players() []Player {
	return m.roster.Players()
}

func (m *Manager) UsedWords() []Word {
	return m.history.Used()
}

func (m *Manager) Words() WordBank {
	return slices.Clone(m.words)
}

// Policy returns the operator's stored impostor policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// SetPolicy validates and persists the operator's impostor policy choice.
func (m *Manager) SetPolicy(token string) (Policy, error) {
	p, err := ParsePolicy(token)
	if err != nil {
		return "", err
	}

	m.policy = p
	m.set(KeyPolicy, string(p))

	return p, nil
}

func (m *Manager) AddPlayer(name string) (Player, error) {
	if m.session != nil {
		return Player{}, ErrSessionActive
	}

	p, err := m.roster.Add(name)
	if err != nil {
		return Player{}, err
	}

	m.rosterChanged()

	return p, nil
}

func (m *Manager) RemovePlayer(id int) error {
	if m.session != nil {
		return ErrSessionActive
	}

	m.roster.Remove(id)
	m.rosterChanged()

	return nil
}

func (m *Manager) RenamePlayer(id int, name string) error {
	if m.session != nil {
		return ErrSessionActive
	}

	if err := m.roster.Rename(id, name); err != nil {
		return err
	}

	m.rosterChanged()

	return nil
}

func (m *Manager) ReorderPlayer(movedID, beforeID int) error {
	if m.session != nil {
		return ErrSessionActive
	}

	m.roster.Reorder(movedID, beforeID)
	m.rosterChanged()

	return nil
}

// Callbacks returns the roster mutations in the shape handed to a RosterSink.
func (m *Manager) Callbacks() RosterCallbacks {
	return RosterCallbacks{
		OnRemove:  m.RemovePlayer,
		OnRename:  m.RenamePlayer,
		OnReorder: m.ReorderPlayer,
	}
}

// StartSession resolves the impostor count, draws a secret word, deals roles
// in roster order and persists the result. Nothing is written when the
// roster is too small.
func (m *Manager) StartSession(policy Policy) (*GameSession, error) {
	if m.session != nil {
		return nil, ErrSessionActive
	}

	players := m.roster.Players()

	count, err := ResolveImpostorCount(policy, len(players), m.rng)
	if err != nil {
		return nil, err
	}
	count = min(count, len(players))

	word := m.history.Select(m.words, m.rng)
	m.save(KeyUsedWords, m.history.Used())

	roles := AssignRoles(len(players), count, m.rng)

	s := newGameSession(word, players, roles)
	m.save(KeyActiveSession, s.record())

	m.session = s
	m.logger.Printf("GAMES: Started session with %d players, %d impostors", len(players), count)

	m.render()

	return s, nil
}

// RevealRole returns a player's card. It has no side effects and may be
// called any number of times.
func (m *Manager) RevealRole(playerID int) (Reveal, error) {
	if m.session == nil {
		return Reveal{}, ErrNoActiveSession
	}

	p, ok := m.roster.Find(playerID)
	if !ok {
		return Reveal{}, ErrPlayerNotFound
	}

	role, ok := m.session.RoleOf(p.Name)
	if !ok {
		return Reveal{}, ErrPlayerNotFound
	}

	rev := Reveal{Player: p, Role: role}
	if !role.IsImpostor() {
		rev.SecretWord = m.session.SecretWord
	}

	return rev, nil
}

// ShowRole reveals a player's card into sink.
func (m *Manager) ShowRole(playerID int, sink RevealSink) error {
	rev, err := m.RevealRole(playerID)
	if err != nil {
		return err
	}

	sink.RenderReveal(rev.Card())

	return nil
}

// EndSession drops the session record and keeps the players.
func (m *Manager) EndSession() error {
	if m.session == nil {
		return ErrNoActiveSession
	}

	m.remove(KeyActiveSession)
	m.save(KeyRoster, m.roster.Players())

	m.session = nil
	m.logger.Printf("GAMES: Ended session")

	m.render()

	return nil
}

// RestoreSession rebuilds the roster and session from the persisted session
// record. Player ids are reassigned from 1 in snapshot order.
func (m *Manager) RestoreSession() bool {
	var rec sessionRecord
	if !m.load(KeyActiveSession, &rec) {
		return false
	}

	roster, session, err := m.fromRecord(rec)
	if err != nil {
		m.discard(KeyActiveSession, err)
		return false
	}

	m.roster = roster
	m.session = session
	m.logger.Printf("GAMES: Restored session with %d players", roster.Len())

	m.render()

	return true
}

func (m *Manager) fromRecord(rec sessionRecord) (*Roster, *GameSession, error) {
	if rec.SecretWord == "" {
		return nil, nil, errors.New("missing secret word")
	}

	if len(rec.Players) < MinPlayers {
		return nil, nil, ErrInsufficientPlayers
	}

	players := make([]Player, 0, len(rec.Players))
	roles := make(RoleVector, 0, len(rec.Players))

	for i, entry := range rec.Players {
		if len(entry) != 1 {
			return nil, nil, fmt.Errorf("player entry %d: want one name, got %d", i, len(entry))
		}

		for name, role := range entry {
			if !role.Valid() {
				return nil, nil, fmt.Errorf("player %q: unknown role %q", name, role)
			}
			players = append(players, Player{ID: i + 1, Name: name})
			roles = append(roles, role)
		}
	}

	roster, err := NewRoster(players)
	if err != nil {
		return nil, nil, err
	}

	word, ok := m.words.Lookup(rec.SecretWord)
	if !ok {
		word = Word{Text: rec.SecretWord}
	}

	return roster, newGameSession(word, roster.Players(), roles), nil
}

// WipeAll erases every persisted record and resets in-memory state.
func (m *Manager) WipeAll() {
	if err := m.store.Clear(); err != nil {
		m.logger.Printf("STORE: %v", &StorageError{Op: "clear", Err: err})
	}

	m.roster = &Roster{}
	m.history = NewHistoryTracker(nil)
	m.session = nil
	m.policy = m.defaultPolicy
	m.logger.Printf("GAMES: Wiped all records")

	m.render()
}

func (m *Manager) rosterChanged() {
	m.save(KeyRoster, m.roster.Players())
	m.render()
}

func (m *Manager) render() {
	if m.sink == nil {
		return
	}

	m.sink.RenderRoster(m.roster.Players(), m.Callbacks())
}

func (m *Manager) get(key string) (string, bool) {
	v, ok, err := m.store.Get(key)
	if err != nil {
		m.logger.Printf("STORE: %v", &StorageError{Op: "get", Key: key, Err: err})
		return "", false
	}

	return v, ok
}

// load decodes the record under key into v. A record that fails to decode
// is removed.
func (m *Manager) load(key string, v any) bool {
	raw, ok := m.get(key)
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		m.discard(key, err)
		return false
	}

	return true
}

func (m *Manager) discard(key string, cause error) {
	m.logger.Printf("STORE: %v; discarding record", &StorageError{Op: "decode", Key: key, Err: cause})
	m.remove(key)
}

func (m *Manager) save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Printf("STORE: %v", &StorageError{Op: "encode", Key: key, Err: err})
		return
	}

	m.set(key, string(data))
}

func (m *Manager) set(key, value string) {
	if err := m.store.Set(key, value); err != nil {
		m.logger.Printf("STORE: %v", &StorageError{Op: "set", Key: key, Err: err})
	}
}

func (m *Manager) remove(key string) {
	if err := m.store.Remove(key); err != nil {
		m.logger.Printf("STORE: %v", &StorageError{Op: "remove", Key: key, Err: err})
	}
}
