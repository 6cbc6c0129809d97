package format

// Defaults used when no option is given.
const (
	DefaultColumnSeparator = "\t"
	DefaultLineSeparator   = "\n"
	DefaultEncoding        = EncodingEcho
)

// Options controls how results are rendered. It is assembled once before
// anything runs and never changes afterwards.
type Options struct {
	ColumnSeparator string
	LineSeparator   string
	Header          bool
	NoEndOfLine     bool
	Encoding        string
}

// DefaultOptions returns tab separated columns, newline terminated lines,
// no header and echo encoding.
func DefaultOptions() Options {
	return Options{
		ColumnSeparator: DefaultColumnSeparator,
		LineSeparator:   DefaultLineSeparator,
		Encoding:        DefaultEncoding,
	}
}

// Validate reports options that cannot be used.
func (o Options) Validate() error {
	_, err := NewEncoder(o.Encoding)
	return err
}
