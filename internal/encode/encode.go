// Package encode renders single values as JSON text.
package encode

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Class is the closed set of encoding strategies a value can take.
type Class int

const (
	ClassNull Class = iota
	ClassString
	ClassBool
	ClassInt
	ClassUint
	ClassFloat
	ClassComposite
)

func (c Class) String() string {
	switch c {
	case ClassNull:
		return "null"
	case ClassString:
		return "string"
	case ClassBool:
		return "bool"
	case ClassInt:
		return "int"
	case ClassUint:
		return "uint"
	case ClassFloat:
		return "float"
	default:
		return "composite"
	}
}

// MarshalFunc is the general-purpose serializer used for strings that need
// escaping and for composite values.
type MarshalFunc func(v any) ([]byte, error)

// ErrUnsupportedValue reports a value that has no JSON representation.
var ErrUnsupportedValue = errors.New("unsupported value")

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Classify returns the encoding class of v. Named scalar types are
// classified by their underlying kind unless they carry their own JSON or
// text marshaling, in which case they are composite.
func Classify(v any) Class {
	switch v.(type) {
	case nil:
		return ClassNull
	case string:
		return ClassString
	case bool:
		return ClassBool
	case int, int8, int16, int32, int64:
		return ClassInt
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return ClassUint
	case float32, float64:
		return ClassFloat
	case json.Number:
		// number literal, left to the serializer
		return ClassComposite
	}
	t := reflect.TypeOf(v)
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return ClassComposite
	}
	switch t.Kind() {
	case reflect.String:
		return ClassString
	case reflect.Bool:
		return ClassBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ClassInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ClassUint
	case reflect.Float32, reflect.Float64:
		return ClassFloat
	}
	return ClassComposite
}

// AppendValue appends the JSON form of v to dst.
func AppendValue(dst []byte, v any, m MarshalFunc) ([]byte, error) {
	switch Classify(v) {
	case ClassNull:
		return append(dst, "null"...), nil
	case ClassString:
		return AppendString(dst, reflect.ValueOf(v).String(), m)
	case ClassBool:
		if reflect.ValueOf(v).Bool() {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case ClassInt:
		return strconv.AppendInt(dst, reflect.ValueOf(v).Int(), 10), nil
	case ClassUint:
		return strconv.AppendUint(dst, reflect.ValueOf(v).Uint(), 10), nil
	case ClassFloat:
		rv := reflect.ValueOf(v)
		return AppendFloat(dst, rv.Float(), rv.Type().Bits())
	}
	b, err := m(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

// IsSafeASCII reports whether s can be quoted without escaping: printable
// ASCII other than '"' and '\'.
func IsSafeASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

// AppendString appends s as a JSON string literal. Strings that are not
// safe ASCII go through m.
func AppendString(dst []byte, s string, m MarshalFunc) ([]byte, error) {
	if IsSafeASCII(s) {
		dst = append(dst, '"')
		dst = append(dst, s...)
		return append(dst, '"'), nil
	}
	b, err := m(s)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

// AppendFloat appends f in its shortest round-trip decimal form, switching
// to exponent notation for very small and very large magnitudes.
func AppendFloat(dst []byte, f float64, bits int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, fmt.Errorf("%w: %s", ErrUnsupportedValue, strconv.FormatFloat(f, 'g', -1, bits))
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	dst = strconv.AppendFloat(dst, f, format, -1, bits)
	if format == 'e' {
		// e-09 -> e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst, nil
}

// KeyText coerces an object key to its string form.
func KeyText(k any) (string, error) {
	switch t := k.(type) {
	case nil:
		return "null", nil
	case string:
		return t, nil
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	switch Classify(k) {
	case ClassString:
		return reflect.ValueOf(k).String(), nil
	case ClassBool:
		return strconv.FormatBool(reflect.ValueOf(k).Bool()), nil
	case ClassInt:
		return strconv.FormatInt(reflect.ValueOf(k).Int(), 10), nil
	case ClassUint:
		return strconv.FormatUint(reflect.ValueOf(k).Uint(), 10), nil
	case ClassFloat:
		rv := reflect.ValueOf(k)
		b, err := AppendFloat(nil, rv.Float(), rv.Type().Bits())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w: %T as object key", ErrUnsupportedValue, k)
}
