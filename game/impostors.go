/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math"
	"strconv"
	"strings"
)

// Policy is the operator's impostor count choice: either a literal positive
// integer ("2") or one of the random tiers.
type Policy string

const (
	PolicyRandom30  Policy = "RANDOM_30"
	PolicyRandom50  Policy = "RANDOM_50"
	PolicyRandomMax Policy = "RANDOM_MAX"

	DefaultPolicy Policy = "1"
)

// ParsePolicy validates a raw token. Unlike ResolveImpostorCount, which falls
// back to one impostor, it rejects anything unrecognized.
func ParsePolicy(token string) (Policy, error) {
	p := Policy(strings.ToUpper(strings.TrimSpace(token)))

	if _, ok := p.fraction(); ok {
		return p, nil
	}

	if _, ok := p.literal(); ok {
		return p, nil
	}

	return "", ErrPolicyInvalid
}

// IsRandom reports whether the policy is one of the random tiers.
func (p Policy) IsRandom() bool {
	_, ok := p.fraction()

	return ok
}

func (p Policy) String() string {
	return string(p)
}

// fraction returns the share of the table the tier may turn into impostors.
func (p Policy) fraction() (float64, bool) {
	switch p {
	case PolicyRandom30:
		return 0.30, true
	case PolicyRandom50:
		return 0.50, true
	case PolicyRandomMax:
		return 1, true
	default:
		return 0, false
	}
}

func (p Policy) literal() (int, bool) {
	n, err := strconv.Atoi(string(p))
	if err != nil || n < 1 {
		return 0, false
	}

	return n, true
}

// ResolveImpostorCount turns a policy into a concrete count in [1, totalPlayers].
//
// Literal policies are capped at totalPlayers, so a table made entirely of
// impostors is possible. Random tiers draw uniformly from [1, U] where U is
// ceil(totalPlayers*fraction), or totalPlayers for RANDOM_MAX. Unrecognized
// tokens resolve to one impostor.
func ResolveImpostorCount(p Policy, totalPlayers int, rng Source) (int, error) {
	if totalPlayers < MinPlayers {
		return 0, ErrInsufficientPlayers
	}

	if n, ok := p.literal(); ok {
		return min(n, totalPlayers), nil
	}

	fraction, ok := p.fraction()
	if !ok {
		return 1, nil
	}

	upper := totalPlayers
	if p != PolicyRandomMax {
		upper = int(math.Ceil(float64(totalPlayers) * fraction))
	}
	upper = max(1, min(upper, totalPlayers))

	return 1 + rng.IntN(upper), nil
}
