package mat

import (
	"math"
	"slices"
)

// Equal reports whether a and b hold the same kind, shape and element
// values. Floating-point values compare equal when they are == or have
// identical bit patterns, so NaN equals itself. Nil values equal only nil.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || !slices.Equal(a.Dims(), b.Dims()) {
		return false
	}

	switch a := a.(type) {
	case *Matrix:
		return floatsEqual(a.Data, b.(*Matrix).Data)
	case *ComplexMatrix:
		b := b.(*ComplexMatrix)
		return floatsEqual(a.Real.Data, b.Real.Data) && floatsEqual(a.Imag.Data, b.Imag.Data)
	case *Array:
		return floatsEqual(a.Data, b.(*Array).Data)
	case *ComplexArray:
		b := b.(*ComplexArray)
		return floatsEqual(a.Real.Data, b.Real.Data) && floatsEqual(a.Imag.Data, b.Imag.Data)
	case Text:
		return a == b.(Text)
	case *CharArray:
		return slices.Equal(a.Data, b.(*CharArray).Data)
	case *Logical:
		return slices.Equal(a.Data, b.(*Logical).Data)
	case *IntArray:
		b := b.(*IntArray)
		return a.Class == b.Class && slices.Equal(a.Data, b.Data)
	case *Record:
		return recordsEqual(a, b.(*Record))
	case *StructArray:
		b := b.(*StructArray)
		if !slices.Equal(a.Fields, b.Fields) || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !recordsEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Cell:
		b := b.(*Cell)
		if len(a.Data) != len(b.Data) {
			return false
		}
		for i := range a.Data {
			if !Equal(a.Data[i], b.Data[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func recordsEqual(a, b *Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.Names(), b.Names()) {
		return false
	}
	for name, av := range a.Fields() {
		bv, _ := b.Get(name)
		if !Equal(av, bv) {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}
