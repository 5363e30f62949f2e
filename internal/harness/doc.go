// Package harness runs declarative test scenarios written in YAML.
//
// A scenario names step functions from a Registry and the typed values they
// should see. The harness builds a tst.Context from those values, calls each
// step through tst, and hands every step's results on to its nested steps.
// Every call is recorded as a trace.Event; the trace is what assertions and
// golden files check.
//
// # Scenario Format
//
//	name: margin_borrow_from_master
//	description: "Working orders count towards exposure"
//	context:
//	  - type: account_id
//	    value: 100
//	steps:
//	  - call: exchange
//	    with: [{type: exchange_id, value: 1}]
//	    steps:
//	      - call: commodity
//	        with: [{type: commodity_id, value: 11}]
//	assertions:
//	  - type: call_count
//	    call: commodity
//	    count: 1
//	expect_error: MATCH_NOT_FOUND   # optional
//
// Files are checked against an embedded CUE schema, then decoded strictly:
// unknown fields are errors at every level.
//
// # Assertions
//
//   - call_count: a callable was called exactly count times
//   - call_order: first calls of the listed callables appear in order
//   - call_contains: some call returned an object containing result
//   - match_priority: a parameter was bound at the given tier
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON trace of a run with
// testdata/golden/{name}.golden. Run IDs are not part of the trace, so
// golden files do not change between runs.
package harness
