package infer

import (
	"fmt"

	"github.com/crimson-sun/menagerie/internal/model"
	"github.com/crimson-sun/menagerie/internal/preprocess"
)

// Scorer produces raw class logits for a preprocessed image. Engine is the
// real implementation.
type Scorer interface {
	Scores(t model.Tensor) ([]float32, error)
}

// TestImage is one held-out image to verify the trained model against.
type TestImage struct {
	ID   string
	Path string
}

// Verifier preprocesses held-out images, scores them, and softmaxes the
// logits into per-class percentages.
type Verifier struct {
	scorer Scorer
	load   func(path string) (model.Tensor, error)
}

// NewVerifier creates a Verifier over the given scorer.
func NewVerifier(scorer Scorer) *Verifier {
	return &Verifier{scorer: scorer, load: preprocess.FromFile}
}

// Predict returns one prediction per test image, in input order.
func (v *Verifier) Predict(images []TestImage) ([]model.Prediction, error) {
	preds := make([]model.Prediction, 0, len(images))
	for _, img := range images {
		tensor, err := v.load(img.Path)
		if err != nil {
			return nil, fmt.Errorf("infer: preprocessing %s: %w", img.Path, err)
		}

		logits, err := v.scorer.Scores(tensor)
		if err != nil {
			return nil, fmt.Errorf("infer: scoring %s: %w", img.ID, err)
		}
		if len(logits) != model.NumLabels {
			return nil, fmt.Errorf("infer: got %d logits for %s, want %d",
				len(logits), img.ID, model.NumLabels)
		}

		p := model.Prediction{ID: img.ID}
		copy(p.Percent[:], Softmax(logits))
		preds = append(preds, p)
	}
	return preds, nil
}
