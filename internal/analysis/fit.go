package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/qdev-lab/memtest/internal/constants"
)

// FitResult is the outcome of one curve-fit attempt. A failed fit carries
// nil parameters and R² = 0; callers must treat that as "no usable fit", not
// as an error.
type FitResult struct {
	// Params is the fitted parameter vector, nil when the fit failed.
	Params []float64

	// R2 is the coefficient of determination against the input data.
	R2 float64

	// OK reports whether the solver converged to finite parameters.
	OK bool
}

// NoFit is the degenerate result returned when a fit cannot be attempted or
// did not converge.
func NoFit() FitResult { return FitResult{} }

// ExpDecay evaluates a*exp(-x/tau) + c.
func ExpDecay(params []float64, x float64) float64 {
	a, tau, c := params[0], params[1], params[2]
	return a*math.Exp(-x/tau) + c
}

// Gaussian evaluates a*exp(-(x-b)^2 / (2c^2)).
func Gaussian(params []float64, x float64) float64 {
	a, b, c := params[0], params[1], params[2]
	d := x - b
	return a * math.Exp(-d*d/(2*c*c))
}

// ExpDecayFit fits a*exp(-x/tau)+c to the (x, y) data by nonlinear least
// squares. Initial guess: a0 = max(|y|), tau0 = mean(x), c0 = min(y).
// Fewer than constants.MinFitPoints points, or a solver that fails to
// converge, yields NoFit.
func ExpDecayFit(xs, ys []float64) FitResult {
	if len(xs) < constants.MinFitPoints || len(xs) != len(ys) {
		return NoFit()
	}

	a0, tau0, c0 := 0.0, 0.0, ys[0]
	for i, y := range ys {
		if m := math.Abs(y); m > a0 {
			a0 = m
		}
		if y < c0 {
			c0 = y
		}
		tau0 += xs[i]
	}
	tau0 /= float64(len(xs))
	if tau0 <= 0 {
		tau0 = 1
	}

	params, ok := leastSquares(xs, ys, []float64{a0, tau0, c0}, func(p []float64, x float64) float64 {
		if p[1] <= 0 {
			return math.Inf(1) // tau must stay positive
		}
		return ExpDecay(p, x)
	})
	if !ok {
		return NoFit()
	}
	return FitResult{Params: params, R2: rSquared(xs, ys, params, ExpDecay), OK: true}
}

// GaussianFit fits a*exp(-(x-b)^2/(2c^2)) to the (x, y) data, sorted by x
// ascending before fitting. Same degenerate contract as ExpDecayFit.
func GaussianFit(xs, ys []float64) FitResult {
	if len(xs) < constants.MinFitPoints || len(xs) != len(ys) {
		return NoFit()
	}

	type pt struct{ x, y float64 }
	pts := make([]pt, len(xs))
	for i := range xs {
		pts[i] = pt{xs[i], ys[i]}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })
	sx := make([]float64, len(pts))
	sy := make([]float64, len(pts))
	for i, p := range pts {
		sx[i] = p.x
		sy[i] = p.y
	}

	// Peak height, peak position, and a quarter of the x span as width.
	a0, b0 := sy[0], sx[0]
	for i, y := range sy {
		if y > a0 {
			a0 = y
			b0 = sx[i]
		}
	}
	c0 := (sx[len(sx)-1] - sx[0]) / 4
	if c0 <= 0 {
		c0 = 1
	}

	params, ok := leastSquares(sx, sy, []float64{a0, b0, c0}, func(p []float64, x float64) float64 {
		if p[2] == 0 {
			return math.Inf(1)
		}
		return Gaussian(p, x)
	})
	if !ok {
		return NoFit()
	}
	return FitResult{Params: params, R2: rSquared(sx, sy, params, Gaussian), OK: true}
}

// LinearFit fits y = slope*x + intercept by ordinary least squares and
// reports the fit's R². Fewer than two points yield zeros.
func LinearFit(xs, ys []float64) (slope, intercept, r2 float64) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, 0
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	r2 = stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return slope, intercept, r2
}

// leastSquares minimizes the sum of squared residuals of model over the data
// with Nelder-Mead, starting from x0. Returns the parameters and whether the
// solve produced finite values.
func leastSquares(xs, ys, x0 []float64, model func(p []float64, x float64) float64) ([]float64, bool) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i, x := range xs {
				r := ys[i] - model(p, x)
				sse += r * r
			}
			if math.IsNaN(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}

	settings := &optimize.Settings{
		MajorIterations: constants.FitMaxIterations,
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil || result == nil {
		return nil, false
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, false
	}
	for _, p := range result.X {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, false
		}
	}
	return result.X, true
}

// rSquared scores fitted parameters against the data via the coefficient of
// determination.
func rSquared(xs, ys, params []float64, model func(p []float64, x float64) float64) float64 {
	estimates := make([]float64, len(xs))
	for i, x := range xs {
		estimates[i] = model(params, x)
	}
	r2 := stat.RSquaredFrom(estimates, ys, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 0
	}
	return r2
}
