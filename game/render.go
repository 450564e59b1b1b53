/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "fmt"

// RosterCallbacks are the roster mutations a rendering collaborator may
// trigger in response to operator gestures.
type RosterCallbacks struct {
	OnRemove  func(id int) error
	OnRename  func(id int, name string) error
	OnReorder func(movedID, beforeID int) error
}

// RosterSink draws the roster. It is invoked after every change with the
// current players and the callbacks that mutate them.
type RosterSink interface {
	RenderRoster(players []Player, callbacks RosterCallbacks)
}

// RevealSink shows one player's card.
type RevealSink interface {
	RenderReveal(title, body string)
}

// Reveal is the read-only view of one player's card.
type Reveal struct {
	Player     Player
	Role       Role
	SecretWord *Word
}

// Card returns the title and body shown to the player.
func (r Reveal) Card() (title, body string) {
	if r.Role.IsImpostor() {
		return fmt.Sprintf("PLAYER %s - IMPOSTOR!", r.Player.Name),
			"YOU DON'T HAVE THE WORD. Listen carefully to everyone's clues and come up with a believable one."
	}

	word := ""
	if r.SecretWord != nil {
		word = r.SecretWord.Text
	}

	return fmt.Sprintf("PLAYER %s - WORD HOLDER!", r.Player.Name),
		fmt.Sprintf("Your secret word is: %s. Give a clue related to it without being too obvious.", word)
}
