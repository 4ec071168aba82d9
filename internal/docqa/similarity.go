package docqa

import "math"

// cosineSimilarity returns the cosine of the angle between a and b.
// A zero vector or mismatched lengths score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
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
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// mostSimilar returns the index of the candidate vector most similar to
// query. Ties resolve to the earliest candidate, keeping selection
// deterministic across runs.
func mostSimilar(candidates [][]float32, query []float32) int {
	best := 0
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		if score := cosineSimilarity(c, query); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
