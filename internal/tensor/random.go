package tensor

import (
	"math"
	"math/rand/v2"
)

// Rounding selects how a continuous draw becomes an integer element. Float
// element types keep the draw as is, narrowed to the element width.
type Rounding int

const (
	// RoundTruncate truncates toward zero, the behaviour of a plain Go
	// float-to-integer conversion.
	RoundTruncate Rounding = iota
	// RoundNearest rounds half away from zero (math.Round).
	RoundNearest
)

func (r Rounding) String() string {
	switch r {
	case RoundTruncate:
		return "truncate"
	case RoundNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

type randomConfig struct {
	seed     uint64
	seeded   bool
	rounding Rounding
}

// RandomOption configures RandomNormal.
type RandomOption func(*randomConfig)

// WithSeed makes the fill reproducible: equal seeds produce equal tensors.
func WithSeed(seed uint64) RandomOption {
	return func(c *randomConfig) {
		c.seed = seed
		c.seeded = true
	}
}

// WithRounding sets the draw-to-integer conversion. Default RoundTruncate.
func WithRounding(r Rounding) RandomOption {
	return func(c *randomConfig) {
		c.rounding = r
	}
}

// RandomNormal fills a tensor with independent standard normal draws (mean 0,
// variance 1). Every call builds its own PCG generator; without WithSeed the
// generator is seeded from the runtime entropy source so successive calls
// diverge.
func RandomNormal[T Number](shape Shape, opts ...RandomOption) (*Tensor[T], error) {
	cfg := randomConfig{rounding: RoundTruncate}
	for _, opt := range opts {
		opt(&cfg)
	}

	t, err := Zeros[T](shape)
	if err != nil {
		return nil, err
	}

	seed1, seed2 := cfg.seed, cfg.seed^0x9e3779b97f4a7c15
	if !cfg.seeded {
		seed1, seed2 = rand.Uint64(), rand.Uint64() //nolint:gosec // G404: statistical fill, not crypto
	}

	rng := rand.New(rand.NewPCG(seed1, seed2)) //nolint:gosec // G404: statistical fill, not crypto
	integral := IsIntegral[T]()

	for i := range t.data {
		v := rng.NormFloat64()
		if integral && cfg.rounding == RoundNearest {
			v = math.Round(v)
		}

		t.data[i] = T(v)
	}

	return t, nil
}

// IsIntegral reports whether T is an integer type, i.e. whether converting
// 0.5 to T yields zero.
func IsIntegral[T Number]() bool {
	half := 0.5
	return T(half) == 0
}
