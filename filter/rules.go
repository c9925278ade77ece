package filter

import "github.com/hupe1980/measgo/record"

// Min admits numeric values >= lo.
func Min(lo float64) Predicate {
	return func(v record.Value) bool { return v.Num >= lo }
}

// Max admits numeric values <= hi.
func Max(hi float64) Predicate {
	return func(v record.Value) bool { return v.Num <= hi }
}

// Between admits numeric values in [lo, hi].
func Between(lo, hi float64) Predicate {
	return func(v record.Value) bool { return v.Num >= lo && v.Num <= hi }
}

// OneOf admits string values from a fixed set.
func OneOf(allowed ...string) Predicate {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return func(v record.Value) bool {
		_, ok := set[v.Str]
		return ok
	}
}

// NonEmpty admits non-empty string values.
func NonEmpty() Predicate {
	return func(v record.Value) bool { return v.Str != "" }
}

// And admits values passing all given predicates.
func And(preds ...Predicate) Predicate {
	return func(v record.Value) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Scale multiplies a numeric value by f (unit conversion).
func Scale(f float64) Transform {
	return func(v record.Value) record.Value {
		v.Num *= f
		return v
	}
}

// Offset adds off to a numeric value.
func Offset(off float64) Transform {
	return func(v record.Value) record.Value {
		v.Num += off
		return v
	}
}

// Clamp limits a numeric value to [lo, hi].
func Clamp(lo, hi float64) Transform {
	return func(v record.Value) record.Value {
		if v.Num < lo {
			v.Num = lo
		}
		if v.Num > hi {
			v.Num = hi
		}
		return v
	}
}

// Chain applies transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(v record.Value) record.Value {
		for _, t := range transforms {
			v = t(v)
		}
		return v
	}
}
