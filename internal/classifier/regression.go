package classifier

import "fmt"

// RidgeRegression is the regression model mapping scaled features to a
// continuous rating. Weights[0] is the intercept.
type RidgeRegression struct {
	Weights []float64 `json:"weights"`
	Lambda  float64   `json:"lambda"`
}

// Fit solves the regularized normal equations (XtX + λI)w = Xty with a
// bias column prepended. The intercept is not penalized.
func (r *RidgeRegression) Fit(rows [][]float64, targets []float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("cannot fit regression on empty data")
	}
	if len(rows) != len(targets) {
		return fmt.Errorf("feature rows (%d) and targets (%d) differ in length", len(rows), len(targets))
	}
	if r.Lambda <= 0 {
		r.Lambda = 1.0
	}

	dims := len(rows[0]) + 1

	// Normal equations with the bias folded into the design matrix.
	a := make([][]float64, dims)
	for i := range a {
		a[i] = make([]float64, dims)
	}
	b := make([]float64, dims)

	design := func(row []float64, j int) float64 {
		if j == 0 {
			return 1
		}
		return row[j-1]
	}

	for k, row := range rows {
		if len(row) != dims-1 {
			return fmt.Errorf("inconsistent feature width at row %d", k)
		}
		for i := 0; i < dims; i++ {
			xi := design(row, i)
			b[i] += xi * targets[k]
			for j := 0; j < dims; j++ {
				a[i][j] += xi * design(row, j)
			}
		}
	}
	for i := 1; i < dims; i++ {
		a[i][i] += r.Lambda
	}

	weights, err := solve(a, b)
	if err != nil {
		return err
	}
	r.Weights = weights
	return nil
}

// Predict returns the continuous rating for one scaled feature vector.
func (r *RidgeRegression) Predict(row []float64) (float64, error) {
	if len(r.Weights) == 0 {
		return 0, fmt.Errorf("regression model is not fitted")
	}
	if len(row) != len(r.Weights)-1 {
		return 0, fmt.Errorf("feature width %d does not match model width %d", len(row), len(r.Weights)-1)
	}
	y := r.Weights[0]
	for j, v := range row {
		y += r.Weights[j+1] * v
	}
	return y, nil
}

// solve runs Gaussian elimination with partial pivoting on a*x = b.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if abs(a[row][col]) > abs(a[pivot][col]) {
				pivot = row
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system, cannot fit model")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for col := row + 1; col < n; col++ {
			sum -= a[row][col] * x[col]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
