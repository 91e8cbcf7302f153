package rng

import "math"

// Sampling helpers share one rule: a helper consumes the same number of
// draws whether or not its noise parameter is zero, so disabling a noise
// term never shifts the position of a stream.

// LognormalMult returns a multiplicative factor with mean 1 and the given
// coefficient of variation. cv <= 0 returns exactly 1.
func (s *Stream) LognormalMult(cv float64) float64 {
	z := s.NormFloat64()
	if cv <= 0 {
		return 1
	}
	sigma2 := math.Log(1 + cv*cv)
	return math.Exp(-sigma2/2 + math.Sqrt(sigma2)*z)
}

// BoundedLognormalMult is LognormalMult clamped to [lo, hi].
func (s *Stream) BoundedLognormalMult(cv, lo, hi float64) float64 {
	v := s.LognormalMult(cv)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Gaussian returns a normal draw with the given mean and standard deviation.
// sigma <= 0 returns exactly mean.
func (s *Stream) Gaussian(mean, sigma float64) float64 {
	z := s.NormFloat64()
	if sigma <= 0 {
		return mean
	}
	return mean + sigma*z
}

// Bernoulli reports success with probability p.
func (s *Stream) Bernoulli(p float64) bool {
	return s.Float64() < p
}

const poissonIterCap = 1 << 16

// Poisson returns a count with the given mean via inverse transform
// sampling. One uniform draw is consumed regardless of lambda.
func (s *Stream) Poisson(lambda float64) int {
	u := s.Float64()
	if lambda <= 0 {
		return 0
	}
	p := math.Exp(-lambda)
	cdf := p
	k := 0
	for u > cdf && k < poissonIterCap {
		k++
		p *= lambda / float64(k)
		cdf += p
	}
	return k
}
