/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Player holds a roster entry. Ids are positive and unique within a roster.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Roster is the ordered list of players. Order only matters for display.
type Roster struct {
	players []Player
}

// NormalizeName trims surrounding whitespace and upper-cases the name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func validateName(name string) (string, error) {
	normalized := NormalizeName(name)

	n := utf8.RuneCountInString(normalized)
	if n < MinNameLength || n > MaxNameLength {
		return "", ErrNameInvalid
	}

	return normalized, nil
}

// NewRoster rebuilds a roster from persisted players, rejecting any input
// that breaks the roster invariants.
func NewRoster(players []Player) (*Roster, error) {
	if len(players) > MaxPlayers {
		return nil, ErrRosterFull
	}

	r := &Roster{players: make([]Player, 0, len(players))}
	ids := make(map[int]bool, len(players))

	for _, p := range players {
		if p.ID < 1 || ids[p.ID] {
			return nil, fmt.Errorf("player %d: invalid or repeated id", p.ID)
		}

		name, err := validateName(p.Name)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", p.ID, err)
		}
		if r.hasName(name, 0) {
			return nil, fmt.Errorf("player %d: %w", p.ID, ErrNameDuplicate)
		}

		ids[p.ID] = true
		r.players = append(r.players, Player{ID: p.ID, Name: name})
	}

	return r, nil
}

func (r *Roster) Len() int {
	return len(r.players)
}

// Players returns a copy of the roster in display order.
func (r *Roster) Players() []Player {
	return slices.Clone(r.players)
}

func (r *Roster) Find(id int) (Player, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return Player{}, false
	}

	return r.players[i], true
}

// Add appends a player with id max+1 (1 when empty).
func (r *Roster) Add(name string) (Player, error) {
	normalized, err := validateName(name)
	if err != nil {
		return Player{}, err
	}

	if r.hasName(normalized, 0) {
		return Player{}, ErrNameDuplicate
	}

	if len(r.players) >= MaxPlayers {
		return Player{}, ErrRosterFull
	}

	p := Player{ID: r.nextID(), Name: normalized}
	r.players = append(r.players, p)

	return p, nil
}

// Remove is a no-op for unknown ids.
func (r *Roster) Remove(id int) {
	i := r.indexOf(id)
	if i < 0 {
		return
	}

	r.players = slices.Delete(r.players, i, i+1)
}

func (r *Roster) Rename(id int, name string) error {
	i := r.indexOf(id)
	if i < 0 {
		return ErrPlayerNotFound
	}

	normalized, err := validateName(name)
	if err != nil {
		return err
	}

	if r.hasName(normalized, id) {
		return ErrNameDuplicate
	}

	r.players[i].Name = normalized

	return nil
}

// Reorder moves movedID so it sits immediately before beforeID. Unknown or
// equal ids leave the roster untouched.
func (r *Roster) Reorder(movedID, beforeID int) {
	if movedID == beforeID {
		return
	}

	from := r.indexOf(movedID)
	if from < 0 || r.indexOf(beforeID) < 0 {
		return
	}

	moved := r.players[from]
	r.players = slices.Delete(r.players, from, from+1)

	to := r.indexOf(beforeID)
	r.players = slices.Insert(r.players, to, moved)
}

func (r *Roster) indexOf(id int) int {
	return slices.IndexFunc(r.players, func(p Player) bool {
		return p.ID == id
	})
}

// hasName reports whether another player (other than skipID) uses name.
func (r *Roster) hasName(name string, skipID int) bool {
	for _, p := range r.players {
		if p.ID != skipID && p.Name == name {
			return true
		}
	}

	return false
}

func (r *Roster) nextID() int {
	highest := 0
	for _, p := range r.players {
		highest = max(highest, p.ID)
	}

	return highest + 1
}
