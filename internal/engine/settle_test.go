package engine

import (
	"testing"

	"contas/internal/core"
)

func TestSettleTwoParty(t *testing.T) {
	m := func(c int64) core.Money { return core.Money{Cents: c} }

	cases := []struct {
		name           string
		r1, r2, g1, g2 int64
		wantWho        core.Person
		wantAmount     int64
	}{
		{"person1 owes", 70000, 30000, 0, 100000, core.Person1, 70000},
		{"person2 owes", 30000, 70000, 100000, 0, core.Person2, 70000},
		{"already settled", 50000, 50000, 50000, 50000, core.PersonNone, 0},
		{"single cent owed", 1, 0, 0, 1, core.Person1, 1},
		{"both covered", 1000, 1000, 2000, 1000, core.PersonNone, 0},
	}
	for _, tc := range cases {
		who, amount := SettleTwoParty(m(tc.r1), m(tc.r2), m(tc.g1), m(tc.g2))
		if who != tc.wantWho || amount.Cents != tc.wantAmount {
			t.Fatalf("%s: settle = %s %d; want %s %d", tc.name, who, amount.Cents, tc.wantWho, tc.wantAmount)
		}
	}
}
