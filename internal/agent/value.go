package agent

import (
	"fmt"
	"strings"
	"time"
)

// ValueKind tags the scalar variants a result cell can hold.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInteger
	ValueFloat
	ValueText
	ValueTimestamp
	ValueBool
)

// Value is a tagged scalar. Callers switch on Kind instead of relying on
// implicit coercion of interface values.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	t    time.Time
	b    bool
}

func NullValue() Value               { return Value{kind: ValueNull} }
func IntegerValue(v int64) Value     { return Value{kind: ValueInteger, i: v} }
func FloatValue(v float64) Value     { return Value{kind: ValueFloat, f: v} }
func TextValue(v string) Value       { return Value{kind: ValueText, s: v} }
func TimestampValue(v time.Time) Value { return Value{kind: ValueTimestamp, t: v} }
func BoolValue(v bool) Value         { return Value{kind: ValueBool, b: v} }

// ValueFromAny converts a driver-native scalar into a tagged Value.
func ValueFromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntegerValue(t)
	case int:
		return IntegerValue(int64(t))
	case int32:
		return IntegerValue(int64(t))
	case float64:
		return FloatValue(t)
	case float32:
		return FloatValue(float64(t))
	case string:
		return TextValue(t)
	case []byte:
		return TextValue(string(t))
	case time.Time:
		return TimestampValue(t)
	case bool:
		return BoolValue(t)
	default:
		return TextValue(fmt.Sprintf("%v", t))
	}
}

func (v Value) Kind() ValueKind      { return v.kind }
func (v Value) IsNull() bool         { return v.kind == ValueNull }
func (v Value) Integer() int64       { return v.i }
func (v Value) Float() float64       { return v.f }
func (v Value) Text() string         { return v.s }
func (v Value) Timestamp() time.Time { return v.t }
func (v Value) Bool() bool           { return v.b }

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case ValueNull:
		return "NULL"
	case ValueInteger:
		return fmt.Sprintf("%d", v.i)
	case ValueFloat:
		return fmt.Sprintf("%g", v.f)
	case ValueText:
		return v.s
	case ValueTimestamp:
		return v.t.Format(time.RFC3339)
	case ValueBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return ""
	}
}

// Literal renders the value as a SQL literal for prompt context: text gets
// single quotes with embedded quotes doubled, everything else renders bare.
func (v Value) Literal() string {
	if v.kind == ValueText {
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	}
	return v.String()
}
