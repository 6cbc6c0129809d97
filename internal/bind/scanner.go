package bind

import "strings"

// Type is the declared SQL type of a bind parameter.
type Type int

const (
	TypeString Type = iota // bare %x with no recognised suffix
	TypeInt
	TypeUint
	TypeFloat
	TypeTiny
	TypeUTiny
	TypeShort
	TypeUShort
	TypeLongLong
	TypeULongLong
	TypeLong
	TypeULong
	TypeDouble
	TypeText
	TypeTime
	TypeDate
	TypeDateTime
	TypeTimestamp
	TypeZTimestamp
	TypeBlob
	TypeClob
	TypeNull
)

var typeNames = map[Type]string{
	TypeString:     "string",
	TypeInt:        "int",
	TypeUint:       "uint",
	TypeFloat:      "float",
	TypeTiny:       "tiny",
	TypeUTiny:      "utiny",
	TypeShort:      "short",
	TypeUShort:     "ushort",
	TypeLongLong:   "longlong",
	TypeULongLong:  "ulonglong",
	TypeLong:       "long",
	TypeULong:      "ulong",
	TypeDouble:     "double",
	TypeText:       "text",
	TypeTime:       "time",
	TypeDate:       "date",
	TypeDateTime:   "datetime",
	TypeTimestamp:  "timestamp",
	TypeZTimestamp: "ztimestamp",
	TypeBlob:       "blob",
	TypeClob:       "clob",
	TypeNull:       "null",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Slots returns how many physical bind values a parameter of this type
// consumes: value, length and a reserved slot for large objects.
func (t Type) Slots() int {
	if t == TypeBlob || t == TypeClob {
		return 3
	}
	return 1
}

// typeTags is ordered longest first so the first prefix match is the
// longest one.
var typeTags = []struct {
	tag string
	typ Type
}{
	{"hhd", TypeTiny},
	{"hhu", TypeUTiny},
	{"lld", TypeLongLong},
	{"llu", TypeULongLong},
	{"pDt", TypeText},
	{"pDi", TypeTime},
	{"pDd", TypeDate},
	{"pDa", TypeDateTime},
	{"pDs", TypeTimestamp},
	{"pDz", TypeZTimestamp},
	{"pDb", TypeBlob},
	{"pDc", TypeClob},
	{"pDn", TypeNull},
	{"hd", TypeShort},
	{"hu", TypeUShort},
	{"ld", TypeLong},
	{"lu", TypeULong},
	{"lf", TypeDouble},
	{"d", TypeInt},
	{"u", TypeUint},
	{"f", TypeFloat},
}

// Param describes one bind parameter found in a statement.
type Param struct {
	Ordinal int // 1-based
	Type    Type
	Slots   int
	Offset  int // byte offset of the '%'
	Len     int // length of the whole token including '%'
}

// Statement is a query text together with the parameters scanned from it.
type Statement struct {
	Text   string
	Params []Param
}

// Scan walks text and returns every bind parameter it declares.
// "%%" is an escaped percent; '%' followed by a letter starts a parameter.
func Scan(text string) *Statement {
	stmt := &Statement{Text: text}

	for i := 0; i < len(text); i++ {
		if text[i] != '%' || i+1 >= len(text) {
			continue
		}
		next := text[i+1]
		if next == '%' {
			i++
			continue
		}
		if !isLetter(next) {
			continue
		}

		typ, n := matchTag(text[i+1:])
		stmt.Params = append(stmt.Params, Param{
			Ordinal: len(stmt.Params) + 1,
			Type:    typ,
			Slots:   typ.Slots(),
			Offset:  i,
			Len:     n + 1,
		})
		i += n
	}

	return stmt
}

// matchTag returns the type selected by the characters following '%' and
// how many of them were consumed.
func matchTag(s string) (Type, int) {
	for _, t := range typeTags {
		if strings.HasPrefix(s, t.tag) {
			return t.typ, len(t.tag)
		}
	}
	return TypeString, 1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Slots returns the total number of bind values the statement consumes.
func (s *Statement) Slots() int {
	n := 0
	for _, p := range s.Params {
		n += p.Slots
	}
	return n
}

// Native rewrites the statement for a driver: each parameter token is
// replaced by placeholder(ordinal) and each "%%" collapses to "%".
func (s *Statement) Native(placeholder func(n int) string) string {
	var b strings.Builder
	b.Grow(len(s.Text))

	next := 0
	for i := 0; i < len(s.Text); i++ {
		if next < len(s.Params) && s.Params[next].Offset == i {
			p := s.Params[next]
			b.WriteString(placeholder(p.Ordinal))
			i += p.Len - 1
			next++
			continue
		}
		if s.Text[i] == '%' && i+1 < len(s.Text) && s.Text[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		b.WriteByte(s.Text[i])
	}

	return b.String()
}
