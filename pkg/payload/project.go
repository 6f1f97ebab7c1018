package payload

import (
	"fmt"
	"reflect"
	"strings"
)

// tagName is the struct tag read by Project.
//
//	Qty int64 `payload:"qty,keepzero"`
//
// Options:
//   - keepzero: emit numeric zero instead of pruning it
//   - "-" as the name skips the field entirely
const tagName = "payload"

// Project converts a tagged struct (or pointer to one) into an Object.
//
// Pruning policy, applied in field declaration order:
//   - empty strings are omitted
//   - numeric zero is omitted unless the field is tagged keepzero
//   - booleans are always emitted as 1 or 0
//   - nil pointers, nil or empty slices are omitted
//   - untagged fields are not emitted
func Project(v any) (*Object, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("payload: cannot project nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("payload: cannot project %T, want struct", v)
	}

	out := NewObject()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, keepZero, ok := parseTag(sf.Tag.Get(tagName))
		if !ok {
			continue
		}
		value, emit, err := projectValue(rv.Field(i), keepZero)
		if err != nil {
			return nil, fmt.Errorf("payload: field %s: %w", sf.Name, err)
		}
		if emit {
			out.Set(name, value)
		}
	}
	return out, nil
}

// MustProject is Project for types known to be projectable at compile time.
func MustProject(v any) *Object {
	o, err := Project(v)
	if err != nil {
		panic(err)
	}
	return o
}

func parseTag(tag string) (name string, keepZero bool, ok bool) {
	if tag == "" || tag == "-" {
		return "", false, false
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "keepzero" {
			keepZero = true
		}
	}
	return parts[0], keepZero, parts[0] != ""
}

func projectValue(fv reflect.Value, keepZero bool) (any, bool, error) {
	switch fv.Kind() {
	case reflect.String:
		s := fv.String()
		return s, s != "", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := fv.Int()
		return n, n != 0 || keepZero, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := int64(fv.Uint())
		return n, n != 0 || keepZero, nil
	case reflect.Bool:
		if fv.Bool() {
			return int64(1), true, nil
		}
		return int64(0), true, nil
	case reflect.Pointer:
		if fv.IsNil() {
			return nil, false, nil
		}
		if o, ok := fv.Interface().(*Object); ok {
			return o, o.Len() > 0, nil
		}
		// An explicitly set pointer is a present value, zero included.
		return projectValue(fv.Elem(), true)
	case reflect.Slice:
		if fv.Len() == 0 {
			return nil, false, nil
		}
		return fv.Interface(), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported kind %s", fv.Kind())
	}
}
