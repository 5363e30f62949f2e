package riskdata

import (
	"fmt"

	"github.com/roach88/scenariotools/internal/tst"
)

// Builders compose risk data declaratively:
//
//	riskData := tst.Aggregate(
//	    Exchange(1,
//	        Commodity(11,
//	            Contract(111, InstrumentFuture))),
//	    Account(100, Master(RelationBorrowFromMaster),
//	        Position(111, 10,
//	            Order(1, 5))))
//
// Every builder calls its step function against the context plus its own
// arguments, then runs its children against that context with the step's
// result in front. Children therefore see the entity they are nested in.

// step calls fn and applies children to the context extended by its results.
func step(c *tst.Context, fn any, children []any) error {
	results, err := tst.Call(fn, c)
	if err != nil {
		return err
	}
	return c.With(results...).ForEach(children...)
}

// Exchange creates or acquires exchange id.
func Exchange(id ExchangeID, children ...any) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(id), NewExchange, children)
	}
}

// Commodity creates or acquires commodity id on the enclosing exchange.
func Commodity(id CommodityID, children ...any) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(id), NewCommodity, children)
	}
}

// Contract creates or acquires contract id of the enclosing commodity.
func Contract(id ContractID, typ InstrumentType) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(id, typ), NewContract, nil)
	}
}

// Account creates or acquires account id.
func Account(id AccountID, children ...any) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(id), NewAccount, children)
	}
}

// Master makes the enclosing account a group master.
func Master(rel AccountGroupRelation, children ...any) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(rel), SetMaster, children)
	}
}

// Position opens a position of the enclosing account.
func Position(contract ContractID, qty Quantity, children ...any) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(contract, qty), NewPosition, children)
	}
}

// Order places an order against the enclosing position.
func Order(id OrderID, qty Quantity) tst.Builder {
	return func(c *tst.Context) error {
		return step(c.With(id, qty), NewOrder, nil)
	}
}

// TestCase runs steps against fresh risk data. Errors are reported with the
// case ID and description.
func TestCase(id CaseID, description string, steps ...any) tst.Builder {
	return func(c *tst.Context) error {
		if err := c.With(NewTestData(), id, description).ForEach(steps...); err != nil {
			return fmt.Errorf("test case %d (%s): %w", id, description, err)
		}
		return nil
	}
}

// DoCalculations computes the margin of account and calls check against the
// context extended by the *MarginReport and the account's OrderMap.
func DoCalculations(account AccountID, check any) tst.Builder {
	return func(c *tst.Context) error {
		ctx := c.With(account)
		results, err := tst.Call(CalculateAccount, ctx)
		if err != nil {
			return err
		}
		_, err = tst.Call(check, ctx.With(results...))
		return err
	}
}
