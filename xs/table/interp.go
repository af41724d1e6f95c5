package table

import "math"

// lerp linearly interpolates between a and b at parameter f in [0, 1].
func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

// interpolate evaluates the law between (x1, y1) and (x2, y2) at x.
// Logarithmic laws fall back to lin-lin when an operand is not positive.
func interpolate(law Law, x1, x2, y1, y2, x float64) float64 {
	switch law {
	case Histogram:
		return y1
	case LinLog:
		if x1 <= 0 {
			break
		}
		return lerp(y1, y2, math.Log(x/x1)/math.Log(x2/x1))
	case LogLin:
		if y1 <= 0 || y2 <= 0 {
			break
		}
		return y1 * math.Exp(math.Log(y2/y1)*(x-x1)/(x2-x1))
	case LogLog:
		if x1 <= 0 || y1 <= 0 || y2 <= 0 {
			break
		}
		return y1 * math.Exp(math.Log(y2/y1)*math.Log(x/x1)/math.Log(x2/x1))
	}
	return lerp(y1, y2, (x-x1)/(x2-x1))
}
