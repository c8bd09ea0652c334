package transaction

import "fmt"

// HandleError annotates a failure from inside a transaction function with the
// transaction name and the step that failed, preserving the wrapped cause.
func HandleError(operation, step string, err error) error {
	return fmt.Errorf("transaction %s: %s: %w", operation, step, err)
}
