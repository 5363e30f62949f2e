package riskdata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Typed identifiers. Each is a distinct type so a context can hold an
// exchange ID and a contract ID side by side and builders still pick the
// right one.
type (
	ExchangeID  int64
	CommodityID int64
	ContractID  int64
	AccountID   int64
	OrderID     int64
	CaseID      int64

	// Quantity is a signed lot count; negative is short.
	Quantity int64

	// Margin is a requirement in whole currency units.
	Margin int64
)

// InstrumentType classifies a contract.
type InstrumentType int

const (
	InstrumentFuture InstrumentType = iota + 1
	InstrumentOption
	InstrumentSpread
)

var instrumentNames = map[InstrumentType]string{
	InstrumentFuture: "future",
	InstrumentOption: "option",
	InstrumentSpread: "spread",
}

func (t InstrumentType) String() string {
	if name, ok := instrumentNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InstrumentType(%d)", int(t))
}

// MarginPerLot is the default requirement for one lot of exposure.
func (t InstrumentType) MarginPerLot() Margin {
	switch t {
	case InstrumentFuture:
		return 100
	case InstrumentOption:
		return 40
	case InstrumentSpread:
		return 25
	}
	return 0
}

// ParseInstrumentType maps a name such as "future" to its InstrumentType.
func ParseInstrumentType(name string) (InstrumentType, error) {
	for t, n := range instrumentNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown instrument type %q", name)
}

// UnmarshalYAML accepts the instrument name.
func (t *InstrumentType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseInstrumentType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AccountGroupRelation says how an account shares margin with its group.
type AccountGroupRelation int

const (
	RelationStandalone AccountGroupRelation = iota
	RelationBorrowFromMaster
	RelationLendToMembers
)

var relationNames = map[AccountGroupRelation]string{
	RelationStandalone:       "standalone",
	RelationBorrowFromMaster: "borrow_from_master",
	RelationLendToMembers:    "lend_to_members",
}

func (r AccountGroupRelation) String() string {
	if name, ok := relationNames[r]; ok {
		return name
	}
	return fmt.Sprintf("AccountGroupRelation(%d)", int(r))
}

// ParseRelation maps a name such as "borrow_from_master" to its relation.
func ParseRelation(name string) (AccountGroupRelation, error) {
	for r, n := range relationNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown account group relation %q", name)
}

// UnmarshalYAML accepts the relation name.
func (r *AccountGroupRelation) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseRelation(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
