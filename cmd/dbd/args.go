package main

import (
	"strconv"

	"github.com/joacominatel/dbd/internal/bind"
)

// argSpec is one -a, -f or -z option in command line order.
type argSpec struct {
	kind  bind.Kind
	value string
}

// argFlag is a pflag.Value that appends to a shared, ordered list so that
// literal, file and null arguments keep their relative positions.
type argFlag struct {
	specs *[]argSpec
	kind  bind.Kind
}

func (f *argFlag) String() string {
	return ""
}

func (f *argFlag) Set(v string) error {
	if f.kind == bind.Null {
		on, err := strconv.ParseBool(v)
		if err != nil || !on {
			return err
		}
	}
	*f.specs = append(*f.specs, argSpec{kind: f.kind, value: v})
	return nil
}

func (f *argFlag) Type() string {
	switch f.kind {
	case bind.Stream:
		return "file"
	case bind.Null:
		return "bool"
	default:
		return "string"
	}
}

// register adds the arguments to args in order.
func register(args *bind.Arguments, specs []argSpec) error {
	for _, spec := range specs {
		switch spec.kind {
		case bind.Literal:
			args.AddLiteral(spec.value)
		case bind.Null:
			args.AddNull()
		case bind.Stream:
			if err := args.AddFile(spec.value); err != nil {
				return err
			}
		}
	}
	return nil
}
