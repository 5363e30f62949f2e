// Package tst is a toolkit for writing compact, declarative test scenarios.
//
// Scenarios are built from small builder callables rather than from local
// fixtures. Builders are ordinary funcs, variadic funcs or function objects
// with declared shapes; they take their arguments from a Context, an ordered
// pool of heterogeneous values. The same Context can serve builders with
// completely different parameter lists.
//
// # Matching
//
// Match and MatchType pick, for a requested type, the context element with
// the best Priority; ties go to the earliest element:
//
//	exact > exact_pointer > reference > pointer > value > custom > none
//
// Matching selects, it never converts: an int element never serves a
// float64 parameter.
//
// # Dispatch
//
// Call binds every fixed parameter by type against the whole context, then
// invokes the callable once. A variadic tail receives the entire context in
// its original order; a *Context parameter receives the context itself.
// Bind performs the matching alone, so failures surface before any side
// effect.
//
//	exchange := func(data *TestData, id ExchangeID) (*Exchange, error) { ... }
//	ex, err := tst.CallAs[*Exchange](exchange, tst.NewContext(data, ExchangeID(1)))
//
// # Composition
//
// Aggregate bundles builders into a single Builder, itself usable inside
// another Aggregate. ForEach applies a list of callables to one context.
//
//	riskData := tst.Aggregate(
//	    riskdata.Exchange(1, riskdata.Commodity(11, riskdata.Contract(111, riskdata.InstrumentFuture))),
//	    riskdata.Account(100, riskdata.Position(111, 10)),
//	)
//	err := riskData.Run(riskdata.NewTestData())
//
// # Errors
//
// Failures are *Error values with codes MATCH_NOT_FOUND,
// UNSUPPORTED_CALLABLE and INDEX_OUT_OF_RANGE. None of them is recovered
// from internally.
package tst
