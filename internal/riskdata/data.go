package riskdata

import (
	"errors"
	"fmt"

	"github.com/roach88/scenariotools/internal/trace"
)

var (
	// ErrNotFound is returned when a builder refers to an entity that was
	// never created.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an entity is created twice with
	// incompatible attributes.
	ErrConflict = errors.New("conflict")
)

// ExchangeEntry is an exchange in the fixture model.
type ExchangeEntry struct {
	ID          ExchangeID
	Commodities []CommodityID
}

func (e *ExchangeEntry) TraceValue() trace.Value {
	return trace.Object{"exchange": trace.Int(e.ID)}
}

// CommodityEntry is a commodity listed on one exchange.
type CommodityEntry struct {
	ID        CommodityID
	Exchange  ExchangeID
	Contracts []ContractID
}

func (c *CommodityEntry) TraceValue() trace.Value {
	return trace.Object{
		"commodity": trace.Int(c.ID),
		"exchange":  trace.Int(c.Exchange),
	}
}

// ContractEntry is a tradable contract of one commodity.
type ContractEntry struct {
	ID           ContractID
	Commodity    CommodityID
	Type         InstrumentType
	MarginPerLot Margin
}

func (c *ContractEntry) TraceValue() trace.Value {
	return trace.Object{
		"contract":       trace.Int(c.ID),
		"commodity":      trace.Int(c.Commodity),
		"instrument":     trace.String(c.Type.String()),
		"margin_per_lot": trace.Int(c.MarginPerLot),
	}
}

// AccountEntry is a trading account.
type AccountEntry struct {
	ID        AccountID
	Master    bool
	Relation  AccountGroupRelation
	Positions []*PositionEntry
}

func (a *AccountEntry) TraceValue() trace.Value {
	return trace.Object{
		"account":  trace.Int(a.ID),
		"master":   trace.Bool(a.Master),
		"relation": trace.String(a.Relation.String()),
	}
}

// Position returns the account's position in contract.
func (a *AccountEntry) Position(contract ContractID) (*PositionEntry, bool) {
	for _, p := range a.Positions {
		if p.Contract == contract {
			return p, true
		}
	}
	return nil, false
}

// PositionEntry is an account's holding in one contract.
type PositionEntry struct {
	Account  AccountID
	Contract ContractID
	Quantity Quantity
	Orders   []OrderID
}

func (p *PositionEntry) TraceValue() trace.Value {
	return trace.Object{
		"account":  trace.Int(p.Account),
		"contract": trace.Int(p.Contract),
		"quantity": trace.Int(p.Quantity),
	}
}

// OrderEntry is a working order against a position.
type OrderEntry struct {
	ID       OrderID
	Account  AccountID
	Contract ContractID
	Quantity Quantity
}

func (o *OrderEntry) TraceValue() trace.Value {
	return trace.Object{
		"order":    trace.Int(o.ID),
		"account":  trace.Int(o.Account),
		"contract": trace.Int(o.Contract),
		"quantity": trace.Int(o.Quantity),
	}
}

// OrderMap indexes orders by ID.
type OrderMap map[OrderID]*OrderEntry

// TestData is the in-memory risk data a scenario builds up.
// Reference data (exchanges, commodities, contracts, accounts) is created
// or acquired; positions and orders are always created.
type TestData struct {
	exchanges   map[ExchangeID]*ExchangeEntry
	commodities map[CommodityID]*CommodityEntry
	contracts   map[ContractID]*ContractEntry
	accounts    map[AccountID]*AccountEntry
	orders      map[OrderID]*OrderEntry
}

// NewTestData returns empty risk data.
func NewTestData() *TestData {
	return &TestData{
		exchanges:   make(map[ExchangeID]*ExchangeEntry),
		commodities: make(map[CommodityID]*CommodityEntry),
		contracts:   make(map[ContractID]*ContractEntry),
		accounts:    make(map[AccountID]*AccountEntry),
		orders:      make(map[OrderID]*OrderEntry),
	}
}

func (d *TestData) TraceValue() trace.Value {
	return trace.Object{
		"exchanges":   trace.Int(len(d.exchanges)),
		"commodities": trace.Int(len(d.commodities)),
		"contracts":   trace.Int(len(d.contracts)),
		"accounts":    trace.Int(len(d.accounts)),
		"orders":      trace.Int(len(d.orders)),
	}
}

// AddExchange creates or acquires an exchange.
func (d *TestData) AddExchange(id ExchangeID) *ExchangeEntry {
	if ex, ok := d.exchanges[id]; ok {
		return ex
	}
	ex := &ExchangeEntry{ID: id}
	d.exchanges[id] = ex
	return ex
}

// AddCommodity creates or acquires a commodity on an existing exchange.
func (d *TestData) AddCommodity(exchange ExchangeID, id CommodityID) (*CommodityEntry, error) {
	ex, ok := d.exchanges[exchange]
	if !ok {
		return nil, fmt.Errorf("exchange %d: %w", exchange, ErrNotFound)
	}
	if cm, ok := d.commodities[id]; ok {
		if cm.Exchange != exchange {
			return nil, fmt.Errorf("commodity %d is listed on exchange %d, not %d: %w",
				id, cm.Exchange, exchange, ErrConflict)
		}
		return cm, nil
	}
	cm := &CommodityEntry{ID: id, Exchange: exchange}
	d.commodities[id] = cm
	ex.Commodities = append(ex.Commodities, id)
	return cm, nil
}

// AddContract creates or acquires a contract of an existing commodity.
func (d *TestData) AddContract(commodity CommodityID, id ContractID, typ InstrumentType) (*ContractEntry, error) {
	cm, ok := d.commodities[commodity]
	if !ok {
		return nil, fmt.Errorf("commodity %d: %w", commodity, ErrNotFound)
	}
	if ct, ok := d.contracts[id]; ok {
		if ct.Commodity != commodity || ct.Type != typ {
			return nil, fmt.Errorf("contract %d already exists as %s of commodity %d: %w",
				id, ct.Type, ct.Commodity, ErrConflict)
		}
		return ct, nil
	}
	ct := &ContractEntry{ID: id, Commodity: commodity, Type: typ, MarginPerLot: typ.MarginPerLot()}
	d.contracts[id] = ct
	cm.Contracts = append(cm.Contracts, id)
	return ct, nil
}

// AddAccount creates or acquires an account.
func (d *TestData) AddAccount(id AccountID) *AccountEntry {
	if acc, ok := d.accounts[id]; ok {
		return acc
	}
	acc := &AccountEntry{ID: id}
	d.accounts[id] = acc
	return acc
}

// AddPosition opens a position of an existing account in an existing contract.
func (d *TestData) AddPosition(account AccountID, contract ContractID, qty Quantity) (*PositionEntry, error) {
	acc, ok := d.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", account, ErrNotFound)
	}
	if _, ok := d.contracts[contract]; !ok {
		return nil, fmt.Errorf("contract %d: %w", contract, ErrNotFound)
	}
	if _, ok := acc.Position(contract); ok {
		return nil, fmt.Errorf("account %d already holds contract %d: %w", account, contract, ErrConflict)
	}
	pos := &PositionEntry{Account: account, Contract: contract, Quantity: qty}
	acc.Positions = append(acc.Positions, pos)
	return pos, nil
}

// AddOrder places a working order against an existing position.
func (d *TestData) AddOrder(account AccountID, contract ContractID, id OrderID, qty Quantity) (*OrderEntry, error) {
	acc, ok := d.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", account, ErrNotFound)
	}
	pos, ok := acc.Position(contract)
	if !ok {
		return nil, fmt.Errorf("position of account %d in contract %d: %w", account, contract, ErrNotFound)
	}
	if _, ok := d.orders[id]; ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrConflict)
	}
	ord := &OrderEntry{ID: id, Account: account, Contract: contract, Quantity: qty}
	d.orders[id] = ord
	pos.Orders = append(pos.Orders, id)
	return ord, nil
}

// Exchange looks up an exchange.
func (d *TestData) Exchange(id ExchangeID) (*ExchangeEntry, bool) {
	ex, ok := d.exchanges[id]
	return ex, ok
}

// Contract looks up a contract.
func (d *TestData) Contract(id ContractID) (*ContractEntry, bool) {
	ct, ok := d.contracts[id]
	return ct, ok
}

// Account looks up an account.
func (d *TestData) Account(id AccountID) (*AccountEntry, bool) {
	acc, ok := d.accounts[id]
	return acc, ok
}

// Orders returns the account's orders.
func (d *TestData) Orders(account AccountID) OrderMap {
	out := make(OrderMap)
	for id, ord := range d.orders {
		if ord.Account == account {
			out[id] = ord
		}
	}
	return out
}
