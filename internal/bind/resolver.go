package bind

// Value is one resolved bind slot.
type Value struct {
	Data []byte
	Len  int
	Null bool
}

// Resolve turns sources into the flat slot array for stmt. The source
// count is checked before anything is read.
func Resolve(sources []*Source, stmt *Statement) ([]Value, error) {
	if len(sources) != len(stmt.Params) {
		return nil, &CountError{
			Statement: stmt.Text,
			Expected:  len(stmt.Params),
			Actual:    len(sources),
		}
	}

	vals := make([]Value, 0, stmt.Slots())
	for i, p := range stmt.Params {
		v, err := sources[i].Resolve()
		if err != nil {
			return nil, &ReadError{Statement: stmt.Text, Source: sources[i].String(), Err: err}
		}

		if p.Slots == 3 {
			// value, length, reserved
			vals = append(vals, v, Value{Len: v.Len}, Value{Null: true})
			continue
		}
		vals = append(vals, v)
	}

	return vals, nil
}
