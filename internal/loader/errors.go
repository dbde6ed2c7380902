package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by Load or Plan is a *LoadError that
// matches exactly one of these through errors.Is. All kinds are fatal.
var (
	// ErrInput covers unreadable sources, malformed records and inputs with
	// no rows to infer columns from.
	ErrInput = errors.New("input error")

	// ErrSchemaExecution means a DROP or CREATE statement was rejected.
	ErrSchemaExecution = errors.New("schema execution failed")

	// ErrRowExecution means an INSERT was rejected; the transaction was
	// rolled back.
	ErrRowExecution = errors.New("row execution failed")

	// ErrTransaction means BEGIN or COMMIT failed.
	ErrTransaction = errors.New("transaction failed")
)

// LoadError locates a failure within a run.
type LoadError struct {
	State State
	Kind  error

	// Line is the 1-based input line of the offending record, 0 when the
	// failure is not tied to a record.
	Line int

	// Statement is the SQL that failed, if any.
	Statement string

	Err error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.State, e.Kind)
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches the error's kind, so errors.Is(err, ErrRowExecution) works
// without losing the underlying driver error.
func (e *LoadError) Is(target error) bool { return target == e.Kind }
