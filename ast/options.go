package ast

// Options is the frozen option record attached to Directive and Role
// nodes. It is built once by a contract's option schema and read through
// typed accessors; there is no way to mutate it afterwards.
//
// A zero Options is valid and returns zero values for every field.
type Options struct {
	ints  map[string]int
	strs  map[string]string
	bools map[string]bool
}

// NewOptions freezes the given field values into an Options record. The
// maps are copied; callers may reuse them.
func NewOptions(ints map[string]int, strs map[string]string, bools map[string]bool) Options {
	o := Options{}
	if len(ints) > 0 {
		o.ints = make(map[string]int, len(ints))
		for k, v := range ints {
			o.ints[k] = v
		}
	}
	if len(strs) > 0 {
		o.strs = make(map[string]string, len(strs))
		for k, v := range strs {
			o.strs[k] = v
		}
	}
	if len(bools) > 0 {
		o.bools = make(map[string]bool, len(bools))
		for k, v := range bools {
			o.bools[k] = v
		}
	}
	return o
}

// Int returns the declared integer field, or 0 if absent.
func (o Options) Int(field string) int { return o.ints[field] }

// String returns the declared string field, or "" if absent.
func (o Options) String(field string) string { return o.strs[field] }

// Bool returns the declared flag field, or false if absent.
func (o Options) Bool(field string) bool { return o.bools[field] }
