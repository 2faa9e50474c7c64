package match

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldNull
	fieldValue
)

// Field is one optional column in a Patch. An unset field is left out of
// the write entirely; a null field writes NULL.
type Field[T any] struct {
	value T
	state fieldState
}

func Some[T any](v T) Field[T] {
	return Field[T]{value: v, state: fieldValue}
}

func None[T any]() Field[T] {
	return Field[T]{state: fieldNull}
}

// Optional treats the zero value as NULL.
func Optional[T comparable](v T) Field[T] {
	var zero T
	if v == zero {
		return None[T]()
	}
	return Some(v)
}

func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (f Field[T]) IsSet() bool  { return f.state != fieldUnset }
func (f Field[T]) IsNull() bool { return f.state == fieldNull }

// Get returns the value and whether it is non-null.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldValue
}

// Ptr is nil for unset and null fields.
func (f Field[T]) Ptr() *T {
	if f.state != fieldValue {
		return nil
	}
	v := f.value
	return &v
}

// OrZero is the value, or T's zero value when unset or null.
func (f Field[T]) OrZero() T {
	if f.state != fieldValue {
		var zero T
		return zero
	}
	return f.value
}

func (f Field[T]) any() any {
	if f.state != fieldValue {
		return nil
	}
	return f.value
}
