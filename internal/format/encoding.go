package format

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Encoding names accepted by NewEncoder.
const (
	EncodingNone           = "none"
	EncodingBase64         = "base64"
	EncodingBase64URL      = "base64url"
	EncodingBase64URLNoPad = "base64url-nopad"
	EncodingBase32         = "base32"
	EncodingBase32Hex      = "base32hex"
	EncodingBase16         = "base16"
	EncodingBase16Lower    = "base16-lower"
	EncodingEcho           = "echo"
	EncodingShell          = "shell"
)

// ErrUnknownEncoding is returned for an encoding name with no encoder.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoder transforms one output value before it is written.
type Encoder interface {
	Encode(value []byte) ([]byte, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func([]byte) ([]byte, error)

func (f EncoderFunc) Encode(value []byte) ([]byte, error) {
	return f(value)
}

var encoders = map[string]Encoder{
	EncodingNone:           EncoderFunc(func(v []byte) ([]byte, error) { return v, nil }),
	EncodingBase64:         textEncoder(base64.StdEncoding.EncodeToString),
	EncodingBase64URL:      textEncoder(base64.URLEncoding.EncodeToString),
	EncodingBase64URLNoPad: textEncoder(base64.RawURLEncoding.EncodeToString),
	EncodingBase32:         textEncoder(base32.StdEncoding.EncodeToString),
	EncodingBase32Hex:      textEncoder(base32.HexEncoding.EncodeToString),
	EncodingBase16:         textEncoder(func(v []byte) string { return strings.ToUpper(hex.EncodeToString(v)) }),
	EncodingBase16Lower:    textEncoder(hex.EncodeToString),
	EncodingEcho:           EncoderFunc(echoEscape),
	EncodingShell:          EncoderFunc(shellQuote),
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string) (Encoder, error) {
	enc, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s': must be one of %s", ErrUnknownEncoding, name, encodingList())
	}
	return enc, nil
}

// Encodings lists the accepted encoding names.
func Encodings() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func encodingList() string {
	names := Encodings()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

func textEncoder(fn func([]byte) string) Encoder {
	return EncoderFunc(func(v []byte) ([]byte, error) {
		return []byte(fn(v)), nil
	})
}

// echoEscape escapes a value so that `echo -e` reproduces it: control
// characters and backslashes become backslash sequences, double quotes
// are escaped and any other non-printable byte becomes \xHH.
func echoEscape(v []byte) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(len(v))

	for _, c := range v {
		switch c {
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
				continue
			}
			b.WriteByte(c)
		}
	}

	return b.Bytes(), nil
}

// shellQuote quotes a value as a single POSIX shell word. NUL cannot be
// carried by a shell argument.
func shellQuote(v []byte) ([]byte, error) {
	if bytes.IndexByte(v, 0) >= 0 {
		return nil, errors.New("value contains a NUL byte")
	}
	return []byte(shellescape.Quote(string(v))), nil
}
