package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/crimson-sun/menagerie/internal/model"
)

// ErrInsufficientSamples indicates a class has fewer images than
// SamplesPerClass requires.
var ErrInsufficientSamples = errors.New("trainer: insufficient samples for class")

// LoadFunc turns an image path into a preprocessed tensor.
type LoadFunc func(path string) (model.Tensor, error)

// Config holds training loop settings.
type Config struct {
	Epochs          int
	SamplesPerClass int
}

// Driver runs the epoch loop: one step per sample index, each step a batch of
// one image per class in class-index order. Execution is strictly sequential;
// the driver is the sole mutator of the training state for the duration of a
// run. Any step failure aborts the run.
type Driver struct {
	module    Module
	optimizer Optimizer
	load      LoadFunc
	cfg       Config
}

// NewDriver creates a Driver over the given module and optimizer. load
// converts image paths to tensors.
func NewDriver(module Module, optimizer Optimizer, load LoadFunc, cfg Config) *Driver {
	return &Driver{module: module, optimizer: optimizer, load: load, cfg: cfg}
}

// Run trains over the image set and returns the mean loss per epoch. It
// validates sample counts up front so a short class fails with a clear error
// instead of partway through an epoch.
func (d *Driver) Run(ctx context.Context, set model.LabeledImageSet) ([]float64, error) {
	for _, label := range model.AllLabels() {
		if len(set[label]) < d.cfg.SamplesPerClass {
			return nil, fmt.Errorf("%w: %s has %d images, need %d",
				ErrInsufficientSamples, label, len(set[label]), d.cfg.SamplesPerClass)
		}
	}

	epochLosses := make([]float64, 0, d.cfg.Epochs)
	for epoch := 0; epoch < d.cfg.Epochs; epoch++ {
		losses := make([]float64, 0, d.cfg.SamplesPerClass)
		for i := 0; i < d.cfg.SamplesPerClass; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			batch, err := d.buildBatch(set, i)
			if err != nil {
				return nil, err
			}

			loss, err := d.module.Step(batch)
			if err != nil {
				return nil, err
			}
			if err := d.optimizer.Step(); err != nil {
				return nil, err
			}
			if err := d.module.ResetGrad(); err != nil {
				return nil, err
			}

			losses = append(losses, float64(loss))
			slog.Debug("training step", "epoch", epoch+1, "step", i+1, "loss", loss)
		}

		mean := stat.Mean(losses, nil)
		epochLosses = append(epochLosses, mean)
		slog.Info("epoch complete", "epoch", epoch+1, "epochs", d.cfg.Epochs, "meanLoss", mean)
	}
	return epochLosses, nil
}

// buildBatch preprocesses the i-th image of every class, in class-index
// order, into one batch.
func (d *Driver) buildBatch(set model.LabeledImageSet, i int) (model.Batch, error) {
	batch := model.Batch{
		Data:   make([]float32, 0, model.NumLabels*model.TensorLen),
		Labels: make([]int64, 0, model.NumLabels),
	}
	for _, label := range model.AllLabels() {
		path := set[label][i]
		tensor, err := d.load(path)
		if err != nil {
			return model.Batch{}, fmt.Errorf("trainer: preprocessing %s image %s: %w", label, path, err)
		}
		batch.Data = append(batch.Data, tensor...)
		batch.Labels = append(batch.Labels, int64(label))
	}
	return batch, nil
}
