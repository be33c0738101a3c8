package registry

import (
	"strconv"

	"github.com/margay/margay/ast"
)

// FieldKind selects the coercion applied to an option value.
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInt
	FieldBool // flag options: present with no value means true
)

// Field declares one typed option of a directive contract.
type Field struct {
	// Name is the canonical underscore field name ("header_rows").
	Name string
	// Aliases are the external hyphenated spellings mapped onto Name
	// ("header-rows"). The canonical name is always accepted too.
	Aliases []string
	Kind    FieldKind

	DefaultInt    int
	DefaultString string
	DefaultBool   bool
}

// OptionSchema is the fixed field table of one contract. Build it once at
// registration time with NewOptionSchema.
type OptionSchema struct {
	fields []Field
	byKey  map[string]*Field // external key (alias or name) -> field
}

// NewOptionSchema freezes the given field declarations.
func NewOptionSchema(fields ...Field) *OptionSchema {
	s := &OptionSchema{
		fields: fields,
		byKey:  make(map[string]*Field, len(fields)*2),
	}
	for i := range s.fields {
		f := &s.fields[i]
		s.byKey[f.Name] = f
		for _, a := range f.Aliases {
			s.byKey[a] = f
		}
	}
	return s
}

// Decode coerces raw `:key: value` pairs into a frozen Options record.
//
// Policy (deliberately the only one): unknown keys are dropped silently,
// and a value that fails coercion falls back to the field's declared
// default. Decode never fails; malformed options are a content problem,
// not an error.
func (s *OptionSchema) Decode(raw []RawOption) ast.Options {
	ints := make(map[string]int)
	strs := make(map[string]string)
	bools := make(map[string]bool)
	if s != nil {
		for _, f := range s.fields {
			switch f.Kind {
			case FieldInt:
				ints[f.Name] = f.DefaultInt
			case FieldString:
				strs[f.Name] = f.DefaultString
			case FieldBool:
				bools[f.Name] = f.DefaultBool
			}
		}
		for _, opt := range raw {
			f, ok := s.byKey[opt.Key]
			if !ok {
				continue
			}
			switch f.Kind {
			case FieldInt:
				if n, err := strconv.Atoi(opt.Value); err == nil {
					ints[f.Name] = n
				}
			case FieldString:
				strs[f.Name] = opt.Value
			case FieldBool:
				switch opt.Value {
				case "", "true", "yes", "on", "1":
					bools[f.Name] = true
				case "false", "no", "off", "0":
					bools[f.Name] = false
				}
			}
		}
	}
	return ast.NewOptions(ints, strs, bools)
}

// RawOption is one tokenized `:key: value` line before coercion.
type RawOption struct {
	Key   string
	Value string
}
