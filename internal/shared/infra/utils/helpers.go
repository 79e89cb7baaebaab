package utils

// Choose devuelve then si cond es cierto y otherwise si no.
func Choose[T any](cond bool, then, otherwise T) T {
	if cond {
		return then
	}
	return otherwise
}

// Coalesce devuelve el primer valor distinto del cero de su tipo.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
