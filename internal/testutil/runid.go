package testutil

// FixedRunIDGenerator returns the same run ID on every call.
//
// Runs recorded with it produce identical call IDs, so a test can compare
// store contents byte for byte across runs.
type FixedRunIDGenerator struct {
	id string
}

// DefaultRunID is used when NewFixedRunIDGenerator gets an empty ID.
const DefaultRunID = "run-00000000-0000-0000-0000-000000000000"

// NewFixedRunIDGenerator creates a generator that always returns id.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
