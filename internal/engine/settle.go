package engine

import (
	"contas/internal/core"
)

// SettleTwoParty reduces "responsibility vs given" for two parties to the
// single transfer that settles them. With integer cents the comparison is
// exact: any positive balance of at least one cent is owed. In a zero-sum
// ledger at most one side can be positive; the household and trip engines
// both settle through this primitive so the tie-break policy cannot drift
// between them.
func SettleTwoParty(resp1, resp2, given1, given2 core.Money) (who core.Person, amount core.Money) {
	balance1 := resp1.Sub(given1)
	balance2 := resp2.Sub(given2)
	switch {
	case balance1.IsPositive():
		return core.Person1, balance1
	case balance2.IsPositive():
		return core.Person2, balance2
	}
	return core.PersonNone, core.Money{}
}
