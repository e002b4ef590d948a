package infer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax converts logits into percentages summing to 100. The maximum logit
// is subtracted before exponentiation to keep exp in range for large scores.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}

	exps := make([]float64, len(logits))
	for i, l := range logits {
		exps[i] = float64(l)
	}
	max := floats.Max(exps)
	for i := range exps {
		exps[i] = math.Exp(exps[i] - max)
	}
	floats.Scale(100/floats.Sum(exps), exps)

	out := make([]float32, len(exps))
	for i, e := range exps {
		out[i] = float32(e)
	}
	return out
}
