package bind

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// StdinName is the file argument name that refers to standard input.
const StdinName = "-"

// Kind identifies where an argument's value comes from.
type Kind int

const (
	Literal Kind = iota
	Stream
	Null
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Stream:
		return "stream"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Source is one bind argument before resolution.
type Source struct {
	Kind  Kind
	Value string // Literal only
	Name  string // Stream only: the file name it was opened by

	r io.Reader
}

// String names the source for error messages.
func (s *Source) String() string {
	switch s.Kind {
	case Literal:
		return fmt.Sprintf("argument %q", s.Value)
	case Stream:
		if s.Name == StdinName {
			return "standard input"
		}
		return fmt.Sprintf("file %q", s.Name)
	default:
		return "null argument"
	}
}

// Resolve produces the value of the source for one execution. Literals
// always yield the same bytes; streams are drained from their current
// position, so a second call only sees what the first one left behind.
func (s *Source) Resolve() (Value, error) {
	switch s.Kind {
	case Literal:
		return Value{Data: []byte(s.Value), Len: len(s.Value)}, nil
	case Stream:
		data, err := io.ReadAll(s.r)
		if err != nil {
			return Value{}, err
		}
		return Value{Data: data, Len: len(data)}, nil
	default:
		return Value{Null: true}, nil
	}
}

// Arguments is the ordered set of bind arguments for one run. File
// arguments are opened once per name; repeated names share the handle.
type Arguments struct {
	fs      afero.Fs
	stdin   io.Reader
	sources []*Source
	streams map[string]io.Reader
	files   []afero.File
}

// NewArguments creates an empty argument list reading files from fs.
func NewArguments(fs afero.Fs, stdin io.Reader) *Arguments {
	return &Arguments{
		fs:      fs,
		stdin:   stdin,
		streams: make(map[string]io.Reader),
	}
}

// AddLiteral appends a literal string argument.
func (a *Arguments) AddLiteral(value string) {
	a.sources = append(a.sources, &Source{Kind: Literal, Value: value})
}

// AddNull appends an explicit NULL argument.
func (a *Arguments) AddNull() {
	a.sources = append(a.sources, &Source{Kind: Null})
}

// AddFile appends an argument read from the named file, or from standard
// input when name is "-".
func (a *Arguments) AddFile(name string) error {
	r, ok := a.streams[name]
	if !ok {
		if name == StdinName {
			r = a.stdin
		} else {
			f, err := a.fs.Open(name)
			if err != nil {
				return &OpenError{Name: name, Err: err}
			}
			a.files = append(a.files, f)
			r = f
		}
		a.streams[name] = r
	}

	a.sources = append(a.sources, &Source{Kind: Stream, Name: name, r: r})
	return nil
}

// Len returns the number of registered arguments.
func (a *Arguments) Len() int {
	return len(a.sources)
}

// Sources returns the arguments in bind order.
func (a *Arguments) Sources() []*Source {
	return a.sources
}

// Close closes every file opened by AddFile. Standard input is left open.
func (a *Arguments) Close() error {
	var first error
	for _, f := range a.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.files = nil
	return first
}
