package domain

// Optional marks a patch field as present or absent, so "omitted" and
// "cleared to the zero value" stay distinguishable.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

func (o Optional[T]) Get() (T, bool) { return o.Value, o.Set }

func (o Optional[T]) OrElse(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}
