/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"slices"
	"testing"
	"testing/quick"
)

func TestAssignRolesCounts(t *testing.T) {
	f := func(n, k uint8, seed uint64) bool {
		total := int(n % 25)
		impostors := 0
		if total > 0 {
			impostors = int(k) % (total + 1)
		}

		v := AssignRoles(total, impostors, NewSeededSource(seed))

		return len(v) == total &&
			v.Count(RoleImpostor) == impostors &&
			v.Count(RoleWordHolder) == total-impostors
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestAssignRolesFisherYates(t *testing.T) {
	// With every draw at 0 the lone impostor walks to the last slot and stays.
	got := AssignRoles(3, 1, &seqSource{vals: []int{0}})
	want := RoleVector{RoleWordHolder, RoleWordHolder, RoleImpostor}

	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssignRolesDeterministicForSeed(t *testing.T) {
	a := AssignRoles(12, 4, NewSeededSource(99))
	b := AssignRoles(12, 4, NewSeededSource(99))

	if !slices.Equal(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestAssignRolesReachesEveryPosition(t *testing.T) {
	rng := NewSeededSource(3)
	hits := make([]int, 5)

	for range 1000 {
		v := AssignRoles(5, 1, rng)
		hits[slices.Index(v, RoleImpostor)]++
	}

	for i, n := range hits {
		if n < 100 {
			t.Errorf("position %d held the impostor %d/1000 times", i, n)
		}
	}
}

func TestAssignRolesClampsCount(t *testing.T) {
	if v := AssignRoles(3, 7, NewSeededSource(1)); v.Count(RoleImpostor) != 3 {
		t.Errorf("impostors = %d, want 3", v.Count(RoleImpostor))
	}
	if v := AssignRoles(3, -1, NewSeededSource(1)); v.Count(RoleImpostor) != 0 {
		t.Errorf("impostors = %d, want 0", v.Count(RoleImpostor))
	}
}
