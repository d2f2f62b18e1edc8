// Package perturb applies random deviations to the non-zero samples of a
// power signal.
package perturb

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Scheme selects the deviation distribution.
type Scheme string

const (
	// Gaussian draws from Normal(0, magnitude).
	Gaussian Scheme = "gaussian"
	// Strict draws one of -magnitude, 0 and +magnitude with equal probability.
	Strict Scheme = "strict"
	// Uniform draws from U(-magnitude, +magnitude).
	Uniform Scheme = "uniform"
	// None leaves the signal untouched.
	None Scheme = "none"
)

// ParseScheme validates a scheme name. The empty string means None.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case Gaussian, Strict, Uniform, None:
		return Scheme(s), nil
	case "":
		return None, nil
	}
	return "", fmt.Errorf("unknown perturbation scheme %q (want gaussian, strict, uniform or none)", s)
}

// NewSource returns a seeded random source. A zero seed is replaced by the
// current time.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Perturber draws one independent offset per non-zero sample.
type Perturber struct {
	Scheme    Scheme
	Magnitude float64
	Src       rand.Source
}

// Apply returns a perturbed copy of power. Samples equal to zero are copied
// unchanged.
func (p *Perturber) Apply(power []float64) []float64 {
	out := make([]float64, len(power))
	copy(out, power)

	draw := p.sampler()
	if draw == nil {
		return out
	}
	for i, v := range out {
		if v == 0 {
			continue
		}
		out[i] = v + draw()
	}
	return out
}

func (p *Perturber) sampler() func() float64 {
	src := p.Src
	if src == nil {
		src = NewSource(0)
	}
	m := p.Magnitude
	switch p.Scheme {
	case Gaussian:
		return distuv.Normal{Mu: 0, Sigma: m, Src: src}.Rand
	case Uniform:
		return distuv.Uniform{Min: -m, Max: m, Src: src}.Rand
	case Strict:
		c := distuv.NewCategorical([]float64{1, 1, 1}, src)
		return func() float64 { return (c.Rand() - 1) * m }
	default:
		return nil
	}
}
