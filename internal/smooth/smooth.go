// Package smooth holds the parameter smoothing primitive shared by the audio
// engine and anything else that must glide toward a moving target.
package smooth

import "math"

// Coefficient returns the fraction of the remaining distance covered in dt
// seconds by an exponential approach with time constant tau.
// tau <= 0 means an instant jump (coefficient 1).
func Coefficient(tau, dt float64) float64 {
	if tau <= 0 {
		return 1
	}
	if dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-dt/tau)
}

// Approach moves current toward target as an exponential approach with time
// constant tau over dt seconds. After one tau the value is ~63% of the way.
func Approach(current, target, tau, dt float64) float64 {
	return step(current, target, Coefficient(tau, dt))
}

// step lands exactly on target when coef is 1.
func step(current, target, coef float64) float64 {
	if coef >= 1 {
		return target
	}
	return current + (target-current)*coef
}

// Ramp is a live value gliding toward a target with a precomputed per-step
// coefficient. It is the per-sample form of Approach.
type Ramp struct {
	Value  float64
	Target float64
	coef   float64
}

// NewRamp returns a ramp settled at v that covers tau seconds of approach in
// (1/stepRate)-second steps.
func NewRamp(v, tau, stepRate float64) Ramp {
	r := Ramp{Value: v, Target: v}
	r.SetTimeConstant(tau, stepRate)
	return r
}

// SetTimeConstant recomputes the per-step coefficient.
func (r *Ramp) SetTimeConstant(tau, stepRate float64) {
	dt := 0.0
	if stepRate > 0 {
		dt = 1 / stepRate
	}
	r.coef = Coefficient(tau, dt)
}

// Step advances one step and returns the new value.
func (r *Ramp) Step() float64 {
	r.Value = step(r.Value, r.Target, r.coef)
	return r.Value
}

// Jump sets value and target at once.
func (r *Ramp) Jump(v float64) {
	r.Value = v
	r.Target = v
}

// Settled reports whether the value is within eps of the target.
func (r *Ramp) Settled(eps float64) bool {
	return math.Abs(r.Target-r.Value) <= eps
}
