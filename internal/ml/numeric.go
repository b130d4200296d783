package ml

import "math"

// roundHalfUp rounds to the nearest integer with .5 going toward +Inf, so
// 112.5 becomes 113 and -2.5 becomes -2. math.Round would send -2.5 to -3.
func roundHalfUp(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}

// toInt converts an integral float, saturating outside the int range.
func toInt(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// scoreOf rounds x to a risk score capped at 100. The cap is applied
// before the int conversion so huge inputs still land on 100. The lower
// end stays open.
func scoreOf(x float64) int {
	r := roundHalfUp(x)
	if r > 100 {
		return 100
	}
	return toInt(r)
}

// capProbability applies the upper bound of 1 and leaves the lower end open.
func capProbability(p float64) float64 {
	if p > 1 {
		return 1
	}
	return p
}

// sigmoid converts a score to a probability
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// stepAbove contributes w when the field is present and strictly above thr.
func stepAbove(p *float64, thr, w float64) float64 {
	if p != nil && *p > thr {
		return w
	}
	return 0
}

// stepBelow contributes w when the field is present and strictly below thr.
func stepBelow(p *float64, thr, w float64) float64 {
	if p != nil && *p < thr {
		return w
	}
	return 0
}
