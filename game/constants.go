/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

const (
	// MinPlayers is the minimum number of players required to start a session
	MinPlayers = 3

	// MaxPlayers is the maximum roster size
	MaxPlayers = 20

	// MinNameLength and MaxNameLength bound a normalized player name, in runes
	MinNameLength = 1
	MaxNameLength = 15
)

// Keys of the persisted records.
const (
	KeyRoster        = "roster"
	KeyActiveSession = "active-session"
	KeyPolicy        = "impostor-policy"
	KeyUsedWords     = "used-word-history"
)
