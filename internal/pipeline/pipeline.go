// Package pipeline wires the four stages together: dataset indexing,
// training, inference-model export, and verification over held-out images.
// Execution is strictly sequential; any stage failure aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/crimson-sun/menagerie/internal/dataset"
	"github.com/crimson-sun/menagerie/internal/engine/infer"
	"github.com/crimson-sun/menagerie/internal/engine/trainer"
	"github.com/crimson-sun/menagerie/internal/model"
	"github.com/crimson-sun/menagerie/internal/report"
)

// Trainer runs the epoch loop and reports per-epoch mean losses. The
// concrete implementation is trainer.Driver.
type Trainer interface {
	Run(ctx context.Context, set model.LabeledImageSet) ([]float64, error)
}

// Predictor scores held-out images. The concrete implementation is
// infer.Verifier.
type Predictor interface {
	Predict(images []infer.TestImage) ([]model.Prediction, error)
}

// Train indexes the dataset under root and runs the driver over it,
// returning the mean loss per epoch.
func Train(ctx context.Context, d Trainer, root string) ([]float64, error) {
	set, err := dataset.Index(root)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	for _, label := range model.AllLabels() {
		slog.Debug("indexed class", "label", label.String(), "images", len(set[label]))
	}

	losses, err := d.Run(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return losses, nil
}

// Export asks the trained module for an inference-only model keeping the
// named graph output.
func Export(module trainer.Module, path, outputName string) error {
	if err := module.Export(path, []string{outputName}); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	slog.Info("exported inference model", "path", path)
	return nil
}

// Verify predicts every test image and renders the result table to w.
func Verify(p Predictor, images []infer.TestImage, w io.Writer) error {
	preds, err := p.Predict(images)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	report.Write(w, preds)
	return nil
}

// TestImages lists the held-out *.jpg files in dir, sorted by name, with the
// base file name as the test identifier.
func TestImages(dir string) ([]infer.TestImage, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	sort.Strings(paths)

	images := make([]infer.TestImage, 0, len(paths))
	for _, p := range paths {
		images = append(images, infer.TestImage{ID: filepath.Base(p), Path: p})
	}
	return images, nil
}
