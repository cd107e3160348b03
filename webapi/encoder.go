// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Encodable is implemented by values that know their own query encoding.
type Encodable interface {
	EncodeQuery(e Encoder) string
}

// Encoder turns Go values into Web API query values.
type Encoder struct {
	ListSeparator  string
	SpaceSeparator string
	RangeSeparator string
	DateLayout     string // always formatted in UTC

	// PreserveSeconds encodes durations as fractional seconds instead of
	// integer milliseconds.
	PreserveSeconds bool
}

// DefaultEncoder is the encoding every request uses.
var DefaultEncoder = Encoder{
	ListSeparator:  ",",
	SpaceSeparator: "+",
	RangeSeparator: "-",
	DateLayout:     "2006-01-02T15:04:05",
}

// Encode returns the query text for v. ok is false for nil and for values
// with no query representation; those are dropped from the query.
func (e Encoder) Encode(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}

	switch x := v.(type) {
	case Encodable:
		return x.EncodeQuery(e), true
	case string:
		return e.text(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.UTC().Format(e.DateLayout), true
	case time.Duration:
		if e.PreserveSeconds {
			return strconv.FormatFloat(x.Seconds(), 'f', -1, 64), true
		}
		return strconv.FormatInt(x.Milliseconds(), 10), true
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = e.text(s)
		}
		return strings.Join(parts, e.ListSeparator), true
	case fmt.Stringer:
		return e.text(x.String()), true
	}
	return e.encodeReflect(reflect.ValueOf(v))
}

func (e Encoder) encodeReflect(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
		return e.Encode(rv.Elem().Interface())
	case reflect.String:
		return e.text(rv.String()), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := e.Encode(rv.Index(i).Interface()); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, e.ListSeparator), true
	}
	return "", false
}

func (e Encoder) text(s string) string {
	if e.SpaceSeparator == "" {
		return s
	}
	return strings.ReplaceAll(s, " ", e.SpaceSeparator)
}

// Range is an inclusive interval encoded as "from-to", or as a single value
// when both ends encode to the same text.
type Range[T any] struct {
	From T
	To   T
}

// EncodeQuery implements Encodable.
func (r Range[T]) EncodeQuery(e Encoder) string {
	from, _ := e.Encode(r.From)
	to, _ := e.Encode(r.To)
	if from == to {
		return from
	}
	return from + e.RangeSeparator + to
}

// DateRange is an interval of instants. Layout overrides the encoder's date
// layout, e.g. "2006" for a year range.
type DateRange struct {
	From   time.Time
	To     time.Time
	Layout string
}

// EncodeQuery implements Encodable.
func (r DateRange) EncodeQuery(e Encoder) string {
	layout := e.DateLayout
	if r.Layout != "" {
		layout = r.Layout
	}
	from := r.From.UTC().Format(layout)
	if r.From.Equal(r.To) {
		return from
	}
	to := r.To.UTC().Format(layout)
	if from == to {
		return from
	}
	return from + e.RangeSeparator + to
}
