package riskdata

import (
	"fmt"

	"github.com/roach88/scenariotools/internal/trace"
)

// MarginLine is the requirement for one position.
type MarginLine struct {
	Contract   ContractID
	Instrument InstrumentType
	Position   Quantity
	Working    Quantity // sum of absolute order quantities
	Exposure   Quantity
	Margin     Margin
}

// MarginReport is the outcome of DoCalculations for one account.
type MarginReport struct {
	Account  AccountID
	Relation AccountGroupRelation
	Lines    []MarginLine
	Total    Margin
}

func (r *MarginReport) TraceValue() trace.Value {
	lines := make(trace.Array, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = trace.Object{
			"contract":   trace.Int(l.Contract),
			"instrument": trace.String(l.Instrument.String()),
			"position":   trace.Int(l.Position),
			"working":    trace.Int(l.Working),
			"exposure":   trace.Int(l.Exposure),
			"margin":     trace.Int(l.Margin),
		}
	}
	return trace.Object{
		"account":  trace.Int(r.Account),
		"relation": trace.String(r.Relation.String()),
		"lines":    lines,
		"total":    trace.Int(r.Total),
	}
}

// Line returns the report line for contract.
func (r *MarginReport) Line(contract ContractID) (MarginLine, bool) {
	for _, l := range r.Lines {
		if l.Contract == contract {
			return l, true
		}
	}
	return MarginLine{}, false
}

// Calculate computes the margin requirement of an account.
//
// Each position is charged for its gross exposure: the absolute position
// plus the absolute quantity of every working order, times the contract's
// margin per lot. Lines follow the order positions were opened in.
func (d *TestData) Calculate(account AccountID) (*MarginReport, error) {
	acc, ok := d.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", account, ErrNotFound)
	}

	report := &MarginReport{Account: acc.ID, Relation: acc.Relation}
	for _, pos := range acc.Positions {
		ct, ok := d.contracts[pos.Contract]
		if !ok {
			return nil, fmt.Errorf("contract %d: %w", pos.Contract, ErrNotFound)
		}
		line := MarginLine{
			Contract:   pos.Contract,
			Instrument: ct.Type,
			Position:   pos.Quantity,
		}
		for _, id := range pos.Orders {
			line.Working += abs(d.orders[id].Quantity)
		}
		line.Exposure = abs(pos.Quantity) + line.Working
		line.Margin = Margin(line.Exposure) * ct.MarginPerLot
		report.Lines = append(report.Lines, line)
		report.Total += line.Margin
	}
	return report, nil
}

func abs(q Quantity) Quantity {
	if q < 0 {
		return -q
	}
	return q
}
