package engine

import "math"

// normEpsilon is the norm below which a vector is considered degenerate.
const normEpsilon = 1e-9

func l2Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// normalize returns the unit vector in the direction of vec, or
// ErrDegenerateEmbedding when the norm is (near-)zero.
func normalize(vec []float32) ([]float32, error) {
	norm := l2Norm(vec)
	if norm < normEpsilon {
		return nil, ErrDegenerateEmbedding
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// A dimension mismatch is a programming error and panics.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("vector dimension mismatch")
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
