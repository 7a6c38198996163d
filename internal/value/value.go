// Package value defines the runtime value union evaluated queries traffic
// in: NULL, numbers, booleans, tagged strings, byte blobs, lists, and the
// filesystem-flavored wrappers (Timestamp, Mode, Interval).
package value

import (
	"fmt"
	"sort"
	"time"
)

// Value is the tagged union of every runtime type a query expression can
// produce. The concrete types below are the only implementations.
type Value interface {
	// Truthy reports how v behaves in a boolean context. NULL is never
	// truthy; callers that need three-valued semantics should check IsNull
	// first.
	Truthy() bool
	String() string
	isValue()
}

// nullType is the type of the singleton absent value. Use the exported
// NullValue, never construct nullType{} directly outside this file.
type nullType struct{}

func (nullType) Truthy() bool  { return false }
func (nullType) String() string { return "NULL" }
func (nullType) isValue()      {}

// NullValue is the one NULL instance; compare with IsNull, not ==, since
// interface equality against a zero-size struct is safe but IsNull reads
// clearer at call sites.
var NullValue Value = nullType{}

// IsNull reports whether v is the NULL value.
func IsNull(v Value) bool {
	_, ok := v.(nullType)
	return ok
}

// Int is a signed integer value.
type Int int64

func (i Int) Truthy() bool   { return i != 0 }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }
func (Int) isValue()         {}

// Float is a floating-point value.
type Float float64

func (f Float) Truthy() bool   { return f != 0 }
func (f Float) String() string { return fmt.Sprintf("%g", float64(f)) }
func (Float) isValue()         {}

// Bool is a boolean value. NULL, not Bool(false), is the result of
// comparisons against NULL -- Bool only appears as a literal or a fully
// resolved non-null comparison result.
type Bool bool

func (b Bool) Truthy() bool   { return bool(b) }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }
func (Bool) isValue()         {}

// Str is a string value. Path-valued columns attach Tags (dir/file/link/
// mount/exec) for the rendering collaborator's colorization; tags never
// affect comparison or equality.
type Str struct {
	S    string
	Tags map[string]bool
}

// NewStr builds an untagged string value.
func NewStr(s string) Str { return Str{S: s} }

// Tagged builds a string value carrying the given tags.
func Tagged(s string, tags ...string) Str {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return Str{S: s, Tags: m}
}

func (s Str) Truthy() bool   { return s.S != "" }
func (s Str) String() string { return s.S }
func (Str) isValue()         {}

// HasTag reports whether s carries tag.
func (s Str) HasTag(tag string) bool { return s.Tags[tag] }

// Bytes is a raw byte blob, used for file content before it's decoded into
// a line list.
type Bytes []byte

func (b Bytes) Truthy() bool   { return len(b) > 0 }
func (b Bytes) String() string { return string(b) }
func (Bytes) isValue()         {}

// List is an ordered, homogeneous-in-practice sequence of values, used for
// the `lines` column and for the materialized right-hand side of `IN`.
type List []Value

func (l List) Truthy() bool { return len(l) > 0 }
func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%v", parts)
}
func (List) isValue() {}

// Timestamp wraps a point in time rendered as local ISO-8601.
type Timestamp time.Time

func (t Timestamp) Truthy() bool   { return true }
func (t Timestamp) String() string { return time.Time(t).Local().Format("2006-01-02T15:04:05") }
func (Timestamp) isValue()         {}

// Mode wraps a POSIX file mode, rendered in octal.
type Mode uint32

func (m Mode) Truthy() bool   { return m != 0 }
func (m Mode) String() string { return fmt.Sprintf("0%o", uint32(m)) }
func (Mode) isValue()         {}

// Interval is a non-negative duration in whole seconds, rendered as up to
// three non-zero day/hour/minute/second components with singular/plural
// inflection.
type Interval int64

func (iv Interval) Truthy() bool { return iv != 0 }

func (iv Interval) String() string {
	secs := int64(iv)
	if secs < 0 {
		secs = -secs
	}
	units := []struct {
		name string
		size int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}
	type component struct {
		n    int64
		name string
	}
	var comps []component
	remaining := secs
	for _, u := range units {
		n := remaining / u.size
		remaining -= n * u.size
		if n > 0 {
			comps = append(comps, component{n, u.name})
		}
	}
	if len(comps) == 0 {
		return "0 seconds"
	}
	if len(comps) > 3 {
		comps = comps[:3]
	}
	parts := make([]string, len(comps))
	for i, c := range comps {
		name := c.name
		if c.n != 1 {
			name += "s"
		}
		parts[i] = fmt.Sprintf("%d %s", c.n, name)
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
func (Interval) isValue() {}

// Row is a runtime tuple paired with its schema's column order, used as the
// element type of a result Table (see internal/eval).
type Row struct {
	Columns []string
	Values  []Value
}

func (r Row) Truthy() bool { return true }
func (r Row) String() string {
	return fmt.Sprintf("%v", r.Values)
}
func (Row) isValue() {}

// Key returns a value usable as a Go map key for group-by purposes. Unlike the three-valued `=` operator, NULL compares
// equal to NULL here -- this function backs grouping, not comparison.
func Key(v Value) interface{} {
	switch x := v.(type) {
	case nullType:
		return nullType{}
	case Int:
		return x
	case Float:
		return x
	case Bool:
		return x
	case Str:
		return x.S
	case Bytes:
		return string(x)
	case Timestamp:
		return time.Time(x)
	case Mode:
		return x
	case Interval:
		return x
	case List:
		keys := make([]interface{}, len(x))
		for i, e := range x {
			keys[i] = Key(e)
		}
		return fmt.Sprintf("%v", keys)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// TupleKey turns a slice of values (e.g. a GROUP BY key tuple) into a single
// comparable Go value suitable for use as a map key.
func TupleKey(vs []Value) interface{} {
	keys := make([]interface{}, len(vs))
	for i, v := range vs {
		keys[i] = Key(v)
	}
	return fmt.Sprintf("%v", keys)
}

// SortStrings is a small helper used by rendering/config code that wants a
// stable, deterministic ordering of string sets (e.g. known tags).
func SortStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
