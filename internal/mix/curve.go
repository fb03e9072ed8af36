package mix

import (
	"fmt"
	"math"
)

// CurveKind selects how a zone moves between From and To.
type CurveKind string

const (
	CurveConst  CurveKind = "const"
	CurveLinear CurveKind = "linear"
	CurveExp    CurveKind = "exp"    // geometric, for frequencies
	CurveSmooth CurveKind = "smooth" // smoothstep
)

// Curve is a target formula over the local position u in [0,1] of a zone.
// A const curve holds From.
type Curve struct {
	Kind CurveKind `yaml:"kind"`
	From float64   `yaml:"from"`
	To   float64   `yaml:"to,omitempty"`
}

func Const(v float64) Curve        { return Curve{Kind: CurveConst, From: v, To: v} }
func Linear(from, to float64) Curve { return Curve{Kind: CurveLinear, From: from, To: to} }
func Exp(from, to float64) Curve    { return Curve{Kind: CurveExp, From: from, To: to} }
func Smooth(from, to float64) Curve { return Curve{Kind: CurveSmooth, From: from, To: to} }

// Eval returns the curve value at u, clamped to [0,1].
func (c Curve) Eval(u float64) float64 {
	if u < 0 || math.IsNaN(u) {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	switch c.Kind {
	case CurveLinear:
		return c.From + (c.To-c.From)*u
	case CurveExp:
		if c.From <= 0 || c.To <= 0 {
			return c.From + (c.To-c.From)*u
		}
		return c.From * math.Pow(c.To/c.From, u)
	case CurveSmooth:
		s := u * u * (3 - 2*u)
		return c.From + (c.To-c.From)*s
	default:
		return c.From
	}
}

func (c Curve) validate() error {
	switch c.Kind {
	case CurveConst, CurveLinear, CurveSmooth:
	case CurveExp:
		if c.From <= 0 || c.To <= 0 {
			return fmt.Errorf("%w: exp curve needs positive endpoints, got %g..%g", ErrCurve, c.From, c.To)
		}
	case "":
		return fmt.Errorf("%w: missing kind", ErrCurve)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrCurve, c.Kind)
	}
	if math.IsNaN(c.From) || math.IsNaN(c.To) || math.IsInf(c.From, 0) || math.IsInf(c.To, 0) {
		return fmt.Errorf("%w: non-finite endpoint", ErrCurve)
	}
	return nil
}
