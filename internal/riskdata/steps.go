package riskdata

import "fmt"

// Step functions. Each takes what it needs from a context by type and
// returns the entity it created, which scenario runners hand on to nested
// steps. Builders and YAML scenarios share them.
//
// Entity pointers fall back to nil when the context has none, so every
// step checks for the entity it is nested in.

func missing(what string) error {
	return fmt.Errorf("no enclosing %s: %w", what, ErrNotFound)
}

// NewExchange creates or acquires an exchange.
func NewExchange(data *TestData, id ExchangeID) (*ExchangeEntry, error) {
	if data == nil {
		return nil, missing("test data")
	}
	return data.AddExchange(id), nil
}

// NewCommodity creates or acquires a commodity on the enclosing exchange.
func NewCommodity(data *TestData, ex *ExchangeEntry, id CommodityID) (*CommodityEntry, error) {
	if data == nil || ex == nil {
		return nil, missing("exchange")
	}
	return data.AddCommodity(ex.ID, id)
}

// NewContract creates or acquires a contract of the enclosing commodity.
func NewContract(data *TestData, cm *CommodityEntry, id ContractID, typ InstrumentType) (*ContractEntry, error) {
	if data == nil || cm == nil {
		return nil, missing("commodity")
	}
	return data.AddContract(cm.ID, id, typ)
}

// NewAccount creates or acquires an account.
func NewAccount(data *TestData, id AccountID) (*AccountEntry, error) {
	if data == nil {
		return nil, missing("test data")
	}
	return data.AddAccount(id), nil
}

// SetMaster makes the enclosing account a group master.
func SetMaster(acc *AccountEntry, rel AccountGroupRelation) (*AccountEntry, error) {
	if acc == nil {
		return nil, missing("account")
	}
	acc.Master = true
	acc.Relation = rel
	return acc, nil
}

// NewPosition opens a position of the enclosing account.
func NewPosition(data *TestData, acc *AccountEntry, contract ContractID, qty Quantity) (*PositionEntry, error) {
	if data == nil || acc == nil {
		return nil, missing("account")
	}
	return data.AddPosition(acc.ID, contract, qty)
}

// NewOrder places an order against the enclosing position.
func NewOrder(data *TestData, pos *PositionEntry, id OrderID, qty Quantity) (*OrderEntry, error) {
	if data == nil || pos == nil {
		return nil, missing("position")
	}
	return data.AddOrder(pos.Account, pos.Contract, id, qty)
}

// CalculateMargin computes the margin of the enclosing account.
func CalculateMargin(data *TestData, acc *AccountEntry) (*MarginReport, error) {
	if data == nil || acc == nil {
		return nil, missing("account")
	}
	return data.Calculate(acc.ID)
}

// CalculateAccount computes the margin of an account by ID and returns its
// orders alongside the report.
func CalculateAccount(data *TestData, id AccountID) (*MarginReport, OrderMap, error) {
	if data == nil {
		return nil, nil, missing("test data")
	}
	report, err := data.Calculate(id)
	if err != nil {
		return nil, nil, err
	}
	return report, data.Orders(id), nil
}

// ExpectTotal fails unless the report's total is want.
func ExpectTotal(r *MarginReport, want Margin) error {
	if r == nil {
		return missing("margin report")
	}
	if r.Total != want {
		return fmt.Errorf("account %d: total margin %d, want %d", r.Account, r.Total, want)
	}
	return nil
}

// ExpectExposure fails unless the report's exposure in contract is want.
func ExpectExposure(r *MarginReport, contract ContractID, want Quantity) error {
	if r == nil {
		return missing("margin report")
	}
	line, ok := r.Line(contract)
	if !ok {
		return fmt.Errorf("account %d: no margin line for contract %d", r.Account, contract)
	}
	if line.Exposure != want {
		return fmt.Errorf("account %d: exposure in contract %d is %d, want %d",
			r.Account, contract, line.Exposure, want)
	}
	return nil
}
