/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// Role is what a player sees when revealing their card.
type Role string

const (
	RoleImpostor   Role = "IMPOSTOR"
	RoleWordHolder Role = "WORD_HOLDER"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsImpostor() bool {
	return r == RoleImpostor
}

func (r Role) Valid() bool {
	return r == RoleImpostor || r == RoleWordHolder
}

// RoleVector is index-aligned with the roster at the moment of assignment.
type RoleVector []Role

// Count returns how many entries hold role.
func (v RoleVector) Count(role Role) int {
	n := 0
	for _, r := range v {
		if r == role {
			n++
		}
	}

	return n
}

// AssignRoles builds a vector with exactly impostors IMPOSTOR entries (clamped
// to [0, total]) and shuffles it with Fisher-Yates.
func AssignRoles(total, impostors int, rng Source) RoleVector {
	total = max(total, 0)
	impostors = max(0, min(impostors, total))

	roles := make(RoleVector, total)
	for i := range roles {
		if i < impostors {
			roles[i] = RoleImpostor
		} else {
			roles[i] = RoleWordHolder
		}
	}

	shuffleRoles(roles, rng)

	return roles
}

func shuffleRoles(roles RoleVector, rng Source) {
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
}
