// Package pipeline holds the error taxonomy and stage reporting shared by
// every pipeline stage.
//
// Record-level errors (SchemaError) are recovered locally: the record is
// dropped with an audit trail and the batch continues. Stage-level errors
// (EmptyInputError, DisconnectedInputError) abort only their stage.
// Configuration errors are fatal and must surface before any processing.
package pipeline

import "fmt"

// SchemaError marks one raw record that could not be normalized because a
// required field was absent or unparsable. The raw record is preserved for
// audit.
type SchemaError struct {
	Field  string // canonical field that failed (author, timestamp, text)
	Reason string
	Raw    []byte // original record, verbatim
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: field %q: %s", e.Field, e.Reason)
}

// EmptyInputError is returned when a stage receives zero usable records.
type EmptyInputError struct {
	Stage string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty input: zero usable records", e.Stage)
}

// DisconnectedInputError is returned by the graph stage when no interaction
// could be resolved from any post. Downstream aggregation proceeds with
// empty centrality scores.
type DisconnectedInputError struct {
	Posts int // posts examined
}

func (e *DisconnectedInputError) Error() string {
	return fmt.Sprintf("graph: no resolvable author interactions in %d posts", e.Posts)
}

// ConfigurationError is fatal and reported before any processing starts.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}
