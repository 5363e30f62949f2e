package trace

// Param records how one fixed parameter of a call was bound.
type Param struct {
	// Type is the parameter type name.
	Type string `json:"type"`

	// Index is the context position that served the parameter, or -1 for
	// the nil fallback and for the context itself.
	Index int `json:"index"`

	// Priority is the match tier name, e.g. "exact".
	Priority string `json:"priority"`
}

// Event is one call made while running a scenario.
type Event struct {
	Seq     int64   `json:"seq"`
	Call    string  `json:"call"`
	Depth   int     `json:"depth"`
	Params  []Param `json:"params"`
	Results []Value `json:"results"`

	// Error is set when binding or invoking the call failed.
	Error string `json:"error,omitempty"`
}

// Value renders the event as a canonical object.
func (e Event) Value() Object {
	params := make(Array, len(e.Params))
	for i, p := range e.Params {
		params[i] = Object{
			"type":     String(p.Type),
			"index":    Int(p.Index),
			"priority": String(p.Priority),
		}
	}
	results := make(Array, len(e.Results))
	copy(results, e.Results)

	obj := Object{
		"seq":     Int(e.Seq),
		"call":    String(e.Call),
		"depth":   Int(e.Depth),
		"params":  params,
		"results": results,
	}
	if e.Error != "" {
		obj["error"] = String(e.Error)
	}
	return obj
}

// Snapshot is the golden form of a scenario run. Run IDs are left out so the
// bytes depend only on what the scenario did.
type Snapshot struct {
	Scenario string
	Events   []Event
	Error    string
}

// Value renders the snapshot as a canonical object.
func (s Snapshot) Value() Object {
	calls := make(Array, len(s.Events))
	for i, e := range s.Events {
		calls[i] = e.Value()
	}
	obj := Object{
		"scenario": String(s.Scenario),
		"calls":    calls,
	}
	if s.Error != "" {
		obj["error"] = String(s.Error)
	}
	return obj
}

// Marshal encodes the snapshot as canonical JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return MarshalCanonical(s.Value())
}
