package psurf

import (
	"math"
)

const (
	tolerance = 1e-9
	epsilon   = 1e-12
)

// DtoR converts degrees to radians
func DtoR(degrees float64) float64 {
	return (math.Pi / 180) * degrees
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
