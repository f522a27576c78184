package stats

// OLS fits y = X*beta + intercept by ordinary least squares using the
// normal equations with a small ridge term for numerical stability.
// Returns the coefficient vector with the intercept as its last element,
// or nil when the system is unsolvable.
func OLS(x [][]float64, y []float64) []float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil
	}
	k := len(x[0]) + 1 // plus intercept

	// A = Xt*X, b = Xt*y over the augmented design matrix.
	a := make([][]float64, k)
	b := make([]float64, k)
	for i := range a {
		a[i] = make([]float64, k)
	}
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		copy(row, x[i])
		row[k-1] = 1
		for p := 0; p < k; p++ {
			b[p] += row[p] * y[i]
			for q := 0; q < k; q++ {
				a[p][q] += row[p] * row[q]
			}
		}
	}
	for p := 0; p < k; p++ {
		a[p][p] += 1e-8
	}
	return solve(a, b)
}

// solve runs Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) []float64 {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if a[pivot][col] == 0 {
			return nil
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	out := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * out[c]
		}
		out[r] = sum / a[r][r]
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
