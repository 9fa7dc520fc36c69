package cache

import (
	"encoding/json"
	"reflect"
	"strconv"
)

// Sizer lets a value report its own estimated footprint, skipping serialization.
type Sizer interface {
	EstimatedSize() int64
}

const (
	fallbackMaxDepth = 8
	fallbackMaxNodes = 10000
	bytesPerChar     = 2
)

// EstimateSize returns a best-effort byte size for v: the length of its JSON
// encoding, or twice the length of a bounded structural rendering when v
// cannot be encoded. It never fails.
func EstimateSize(v any) (size int64) {
	if s, ok := v.(Sizer); ok {
		return s.EstimatedSize()
	}

	defer func() {
		if r := recover(); r != nil {
			size = fallbackSize(v)
		}
	}()

	b, err := json.Marshal(v)
	if err != nil {
		return fallbackSize(v)
	}
	return int64(len(b))
}

func fallbackSize(v any) int64 {
	budget := fallbackMaxNodes
	return int64(renderedLen(reflect.ValueOf(v), 0, &budget)) * bytesPerChar
}

// renderedLen approximates the printed length of v without following
// references deeper than fallbackMaxDepth or visiting more than budget nodes.
func renderedLen(v reflect.Value, depth int, budget *int) int {
	if !v.IsValid() {
		return len("null")
	}
	if depth > fallbackMaxDepth || *budget <= 0 {
		return len("...")
	}
	*budget--

	switch v.Kind() {
	case reflect.String:
		return v.Len() + 2
	case reflect.Bool:
		if v.Bool() {
			return len("true")
		}
		return len("false")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return len(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return len(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return len(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		return len(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return len("null")
		}
		return renderedLen(v.Elem(), depth+1, budget)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return len("null")
		}
		n := 2
		for i := 0; i < v.Len(); i++ {
			n += renderedLen(v.Index(i), depth+1, budget) + 1
		}
		return n
	case reflect.Map:
		if v.IsNil() {
			return len("null")
		}
		n := 2
		iter := v.MapRange()
		for iter.Next() {
			n += renderedLen(iter.Key(), depth+1, budget) + renderedLen(iter.Value(), depth+1, budget) + 2
		}
		return n
	case reflect.Struct:
		n := 2
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			n += len(t.Field(i).Name) + 3 + renderedLen(v.Field(i), depth+1, budget)
		}
		return n
	default:
		// chan, func, unsafe pointer
		return len(v.Type().String())
	}
}
