package pricing

import "math"

// Abramowitz & Stegun 26.2.17 rational approximation coefficients.
// Absolute error is below 7.5e-8 over the whole real line.
const (
	asP  = 0.2316419
	asB1 = 0.319381530
	asB2 = -0.356563782
	asB3 = 1.781477937
	asB4 = -1.821255978
	asB5 = 1.330274429
)

// NormCDF approximates the standard normal cumulative distribution function.
// Symmetric by construction: NormCDF(-x) == 1 - NormCDF(x).
func NormCDF(x float64) float64 {
	if x < 0 {
		return 1 - NormCDF(-x)
	}
	t := 1 / (1 + asP*x)
	poly := t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
	return 1 - normPDF(x)*poly
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
