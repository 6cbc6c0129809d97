package format

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// EncodingError reports a value the configured encoder rejected.
type EncodingError struct {
	Encoding string
	Cause    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("could not %s encode data: %v", e.Encoding, e.Cause)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// WriteError reports a failure writing to the output.
type WriteError struct {
	What  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed while writing %s: %v", e.What, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Writer renders lines of output. Lines are separated by the line
// separator; the separator after the last line is written by Close unless
// NoEndOfLine is set. A header is written at most once per Writer.
type Writer struct {
	w      io.Writer
	opts   Options
	enc    Encoder
	buf    bytes.Buffer
	lines  int
	rows   int
	header bool
}

// NewWriter creates a Writer on w. The options are validated here.
func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	enc, err := NewEncoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, opts: opts, enc: enc}, nil
}

// WriteHeader writes the column names when headers are enabled and no
// header has been written yet. Names pass through the encoder.
func (w *Writer) WriteHeader(columns []string) error {
	if !w.opts.Header || w.header {
		return nil
	}
	w.header = true
	return w.writeLine(columns, true, "header")
}

// WriteRow writes one data row, encoding every value.
func (w *Writer) WriteRow(values []string) error {
	if err := w.writeLine(values, true, "entry"); err != nil {
		return err
	}
	w.rows++
	return nil
}

// WriteFields writes one line of values as they are.
func (w *Writer) WriteFields(values []string) error {
	return w.writeLine(values, false, "entry")
}

// WriteCount writes a row count as a decimal number.
func (w *Writer) WriteCount(n int64) error {
	return w.writeLine([]string{strconv.FormatInt(n, 10)}, false, "count")
}

// Close terminates the output with the line separator unless suppressed.
func (w *Writer) Close() error {
	if w.opts.NoEndOfLine {
		return nil
	}
	if _, err := io.WriteString(w.w, w.opts.LineSeparator); err != nil {
		return &WriteError{What: "end of line", Cause: err}
	}
	return nil
}

// Lines returns the number of lines written so far, header included.
func (w *Writer) Lines() int {
	return w.lines
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeLine(values []string, encode bool, what string) error {
	w.buf.Reset()
	if w.lines > 0 {
		w.buf.WriteString(w.opts.LineSeparator)
	}

	for i, v := range values {
		if i > 0 {
			w.buf.WriteString(w.opts.ColumnSeparator)
		}
		if !encode {
			w.buf.WriteString(v)
			continue
		}
		out, err := w.enc.Encode([]byte(v))
		if err != nil {
			return &EncodingError{Encoding: w.opts.Encoding, Cause: err}
		}
		w.buf.Write(out)
	}

	if _, err := w.w.Write(w.buf.Bytes()); err != nil {
		return &WriteError{What: what, Cause: err}
	}
	w.lines++
	return nil
}
