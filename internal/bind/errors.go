package bind

import "fmt"

// CountError reports a mismatch between the parameters a statement
// declares and the arguments supplied for it.
type CountError struct {
	Statement string
	Expected  int
	Actual    int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("database query '%s' expects %d arguments, %d provided", e.Statement, e.Expected, e.Actual)
}

// ReadError reports a failure while draining a stream argument.
type ReadError struct {
	Statement string
	Source    string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("database query '%s' failed while reading %s: %v", e.Statement, e.Source, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// OpenError reports a file argument that could not be opened.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open '%s': %v", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
