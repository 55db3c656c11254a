package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Rat is an exact fraction. The denominator is always positive and the
// fraction is always reduced, so two Rats holding the same value compare
// equal with ==. Values built with the zero value must go through NewRat or
// Int; Rat{} is treated as zero by every method.
type Rat struct {
	num int64
	den int64
}

func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func NewRat(num, den int64) Rat {
	if den == 0 {
		panic("model: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd64(num, den)
	if g > 1 {
		num /= g
		den /= g
	}
	if num == 0 {
		den = 1
	}
	return Rat{num: num, den: den}
}

func Int(n int64) Rat {
	return Rat{num: n, den: 1}
}

func (r Rat) norm() Rat {
	if r.den == 0 {
		return Rat{num: 0, den: 1}
	}
	return r
}

func (r Rat) Num() int64 { return r.norm().num }
func (r Rat) Den() int64 { return r.norm().den }

func (r Rat) Add(o Rat) Rat {
	r, o = r.norm(), o.norm()
	return NewRat(r.num*o.den+o.num*r.den, r.den*o.den)
}

func (r Rat) Sub(o Rat) Rat {
	o = o.norm()
	return r.Add(Rat{num: -o.num, den: o.den})
}

func (r Rat) Mul(o Rat) Rat {
	r, o = r.norm(), o.norm()
	return NewRat(r.num*o.num, r.den*o.den)
}

func (r Rat) Div(o Rat) Rat {
	r, o = r.norm(), o.norm()
	if o.num == 0 {
		panic("model: division by zero")
	}
	return NewRat(r.num*o.den, r.den*o.num)
}

func (r Rat) MulInt(n int64) Rat {
	return r.Mul(Int(n))
}

func (r Rat) Cmp(o Rat) int {
	r, o = r.norm(), o.norm()
	a, b := r.num*o.den, o.num*r.den
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r Rat) Equal(o Rat) bool { return r.Cmp(o) == 0 }

func (r Rat) Sign() int {
	return r.Cmp(Rat{})
}

func (r Rat) IsInt() bool { return r.norm().den == 1 }

// Int64 returns the integer value; callers check IsInt first.
func (r Rat) Int64() int64 {
	r = r.norm()
	return r.num / r.den
}

func (r Rat) Float64() float64 {
	r = r.norm()
	return float64(r.num) / float64(r.den)
}

// Mod reports the remainder of r / o as a fraction in [0, o).
func (r Rat) Mod(o Rat) Rat {
	q := r.Div(o)
	whole := q.Int64()
	if q.Sign() < 0 && !q.IsInt() {
		whole--
	}
	return r.Sub(o.MulInt(whole))
}

func (r Rat) String() string {
	r = r.norm()
	if r.den == 1 {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

// MarshalJSON writes the value as a JSON number, which is what the editor
// expects for decimal positions.
func (r Rat) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Float64())
}

// Decimal formats r as a terminating decimal ("3.5"). Fractions that do not
// terminate fall back to float formatting.
func (r Rat) Decimal() string {
	r = r.norm()
	d := r.den
	for d%2 == 0 {
		d /= 2
	}
	for d%5 == 0 {
		d /= 5
	}
	if d != 1 {
		return strconv.FormatFloat(r.Float64(), 'f', -1, 64)
	}
	s := strconv.FormatInt(r.num/r.den, 10)
	rem := r.num % r.den
	if rem < 0 {
		rem = -rem
		if r.num/r.den == 0 {
			s = "-" + s
		}
	}
	if rem == 0 {
		return s
	}
	s += "."
	for rem != 0 {
		rem *= 10
		s += strconv.FormatInt(rem/r.den, 10)
		rem %= r.den
	}
	return s
}
