package plotting

import (
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// AsFloats converts an array-like value to a fresh float64 slice.
//
// Accepted inputs are r2.Vec, any gonum mat.Vector, and slices or arrays
// of any integer or float type, including []any holding numbers as
// decoded from YAML. Components must be finite.
func AsFloats(v any) ([]float64, error) {
	var out []float64
	switch x := v.(type) {
	case nil:
		return nil, invalidf("array-like value is nil")
	case []float64:
		out = append([]float64(nil), x...)
	case []float32:
		out = make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
	case []int:
		out = make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
	case [2]float64:
		out = []float64{x[0], x[1]}
	case [2]int:
		out = []float64{float64(x[0]), float64(x[1])}
	case r2.Vec:
		out = []float64{x.X, x.Y}
	case mat.Vector:
		out = make([]float64, x.Len())
		for i := range out {
			out[i] = x.AtVec(i)
		}
	default:
		var err error
		if out, err = reflectFloats(v); err != nil {
			return nil, err
		}
	}

	for i, f := range out {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalidf("component %d is not finite: %v", i, f)
		}
	}
	return out, nil
}

func reflectFloats(v any) ([]float64, error) {
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, invalidf("%T is not array-like", v)
	}

	out := make([]float64, rv.Len())
	for i := range out {
		e := rv.Index(i)
		if e.Kind() == reflect.Interface {
			e = e.Elem()
		}
		switch e.Kind() {
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			out[i] = float64(e.Uint())
		default:
			return nil, invalidf("%T is not array-like: component %d is not a number", v, i)
		}
	}
	return out, nil
}

// AsPoint2 converts an array-like value of exactly two components to r2.Vec.
func AsPoint2(v any) (r2.Vec, error) {
	xs, err := AsFloats(v)
	if err != nil {
		return r2.Vec{}, err
	}
	if len(xs) != 2 {
		return r2.Vec{}, invalidf("expected 2 coordinates, got %d", len(xs))
	}
	return r2.Vec{X: xs[0], Y: xs[1]}, nil
}
