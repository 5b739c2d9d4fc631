// SPDX-License-Identifier: MIT

package matrix

import "gonum.org/v1/gonum/mat"

// ToGonum converts m into a gonum *mat.Dense (float64). Values above 2^53 in
// magnitude lose precision; callers comparing products should keep inputs small.
// A nil m yields nil.
func ToGonum(m *Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}

	return mat.NewDense(m.r, m.c, data)
}

// FromGonum converts an integral gonum matrix back into Dense, truncating
// fractional parts toward zero.
// Errors: ErrNilMatrix on nil input.
func FromGonum(g mat.Matrix) (*Dense, error) {
	if g == nil {
		return nil, ErrNilMatrix
	}
	r, c := g.Dims()
	m, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			m.data[i*c+j] = int64(g.At(i, j))
		}
	}

	return m, nil
}
