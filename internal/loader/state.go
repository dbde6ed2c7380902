package loader

import "fmt"

// State is a stage of one load. A run moves forward through the stages in
// declaration order and ends in Committed or Aborted.
type State int

const (
	HeaderResolution State = iota
	Sampling
	SchemaEmission
	TransactionOpen
	RowInsertion
	TransactionCommit
	Committed
	Aborted
)

var stateNames = [...]string{
	HeaderResolution:  "header_resolution",
	Sampling:          "sampling",
	SchemaEmission:    "schema_emission",
	TransactionOpen:   "transaction_open",
	RowInsertion:      "row_insertion",
	TransactionCommit: "transaction_commit",
	Committed:         "committed",
	Aborted:           "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
