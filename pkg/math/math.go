// Package math holds the integer helpers the layout and data paths share.
// They are generic over any integer kind so that `Byte`, `Block` and `Ino`
// values can be combined without conversions.
package math

type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func Min[T Integer](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func Max[T Integer](a, b T) T {
	if b > a {
		return b
	}
	return a
}

// DivRoundUp divides `a` by `b`, rounding any remainder up.
func DivRoundUp[T Integer](a, b T) T {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// RoundUp rounds `a` up to the nearest multiple of `b`.
func RoundUp[T Integer](a, b T) T { return DivRoundUp(a, b) * b }
