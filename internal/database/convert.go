package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joacominatel/dbd/internal/bind"
)

// Args collapses the resolved slot array of stmt into one driver argument
// per parameter, converting each value according to its declared type.
func Args(stmt *bind.Statement, vals []bind.Value) ([]any, error) {
	if len(vals) != stmt.Slots() {
		return nil, fmt.Errorf("statement needs %d bind values, got %d", stmt.Slots(), len(vals))
	}

	args := make([]any, 0, len(stmt.Params))
	slot := 0
	for _, p := range stmt.Params {
		v := vals[slot]
		if p.Slots == 3 {
			// the length slot bounds the value; the reserved slot is unused
			if n := vals[slot+1].Len; !v.Null && n < len(v.Data) {
				v.Data = v.Data[:n]
			}
		}
		slot += p.Slots

		arg, err := convert(p, v)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return args, nil
}

// convert maps one value to a driver argument. Numbers may carry
// surrounding whitespace, such as the trailing newline of a file argument.
func convert(p bind.Param, v bind.Value) (any, error) {
	if v.Null || p.Type == bind.TypeNull {
		return nil, nil
	}

	s := string(v.Data)
	switch p.Type {
	case bind.TypeInt, bind.TypeTiny, bind.TypeShort, bind.TypeLong, bind.TypeLongLong:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, paramError(p, s, err)
		}
		return n, nil
	case bind.TypeUint, bind.TypeUTiny, bind.TypeUShort, bind.TypeULong, bind.TypeULongLong:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, paramError(p, s, err)
		}
		return n, nil
	case bind.TypeFloat, bind.TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, paramError(p, s, err)
		}
		return f, nil
	case bind.TypeBlob:
		return v.Data, nil
	default:
		return s, nil
	}
}

func paramError(p bind.Param, s string, err error) error {
	return fmt.Errorf("parameter %d (%s): invalid value %q: %w", p.Ordinal, p.Type, s, err)
}
