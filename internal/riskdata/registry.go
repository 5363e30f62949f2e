package riskdata

import (
	"fmt"

	"github.com/roach88/scenariotools/internal/harness"
)

// Registry returns a scenario registry for risk data: the ID and quantity
// types, every step function, and a fresh *TestData fixture per run.
func Registry() *harness.Registry {
	reg := harness.NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("riskdata: %v", err))
		}
	}

	must(reg.RegisterType("exchange_id", ExchangeID(0)))
	must(reg.RegisterType("commodity_id", CommodityID(0)))
	must(reg.RegisterType("contract_id", ContractID(0)))
	must(reg.RegisterType("account_id", AccountID(0)))
	must(reg.RegisterType("order_id", OrderID(0)))
	must(reg.RegisterType("case_id", CaseID(0)))
	must(reg.RegisterType("quantity", Quantity(0)))
	must(reg.RegisterType("margin", Margin(0)))
	must(reg.RegisterType("instrument", InstrumentType(0)))
	must(reg.RegisterType("relation", AccountGroupRelation(0)))

	must(reg.RegisterCall("exchange", NewExchange))
	must(reg.RegisterCall("commodity", NewCommodity))
	must(reg.RegisterCall("contract", NewContract))
	must(reg.RegisterCall("account", NewAccount))
	must(reg.RegisterCall("master", SetMaster))
	must(reg.RegisterCall("position", NewPosition))
	must(reg.RegisterCall("order", NewOrder))
	must(reg.RegisterCall("calculate", CalculateMargin))
	must(reg.RegisterCall("calculate_account", CalculateAccount))
	must(reg.RegisterCall("expect_total", ExpectTotal))
	must(reg.RegisterCall("expect_exposure", ExpectExposure))

	must(reg.RegisterFixture("test_data", func() any { return NewTestData() }))
	return reg
}
