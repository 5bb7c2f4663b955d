package dataset

import (
	"strconv"
)

// ValueKind distinguishes the three scalar shapes a cell can take.
type ValueKind int

const (
	ValueMissing ValueKind = iota
	ValueNumber
	ValueText
)

// Value is one cell. Numbers keep the text they were parsed from so an
// exported view reproduces the uploaded formatting.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Number returns a numeric value. An empty text is replaced by the shortest
// decimal form of f.
func Number(f float64, text string) Value {
	if text == "" {
		text = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return Value{kind: ValueNumber, num: f, text: text}
}

// Text returns a string value.
func Text(s string) Value { return Value{kind: ValueText, text: s} }

func (v Value) IsMissing() bool { return v.kind == ValueMissing }
func (v Value) IsNumber() bool { return v.kind == ValueNumber }

// Float returns the numeric value and whether the cell is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == ValueNumber
}

// String is the value's display form; missing values render empty.
func (v Value) String() string {
	return v.text
}

// Interface returns nil, a float64 or a string, suitable for JSON encoding.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ValueNumber:
		return v.num
	case ValueText:
		return v.text
	default:
		return nil
	}
}

// Equal compares kind and content; numbers compare by value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == ValueNumber {
		return v.num == o.num
	}
	return v.text == o.text
}
