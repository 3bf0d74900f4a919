package utils

import (
	"fmt"
)

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

// NewReverseRange counts down from rmax to rmin, inclusive
func NewReverseRange(rmin, rmax int) (r Index) {
	return NewRange(rmin, rmax).Reverse()
}

func (I Index) AddInPlace(val int) (r Index) {
	for i := range I {
		I[i] += val
	}
	return I
}

// Reverse returns a reversed copy
func (I Index) Reverse() (r Index) {
	var (
		n = len(I)
	)
	r = make(Index, n)
	for i, val := range I {
		r[n-1-i] = val
	}
	return
}

// SwapPairs exchanges the members of each consecutive pair in place.
func (I Index) SwapPairs() (err error) {
	if len(I)%2 != 0 {
		err = fmt.Errorf("cannot swap pairs of an odd length index: len = %v", len(I))
		return
	}
	for i := 0; i < len(I); i += 2 {
		I[i], I[i+1] = I[i+1], I[i]
	}
	return
}

// CheckBounds verifies every entry lies in [0, n)
func (I Index) CheckBounds(n int) (err error) {
	for i, val := range I {
		switch {
		case val < 0:
			err = fmt.Errorf("dimension bounds error, index < 0: I[%v] = %v", i, val)
			return
		case val > n-1:
			err = fmt.Errorf("dimension bounds error, index > max: I[%v] = %v, max = %v", i, val, n-1)
			return
		}
	}
	return
}
