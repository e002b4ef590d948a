// Package trainer drives on-device training over the opaque capability set
// the external runtime exposes: checkpoint state, a trainable module over
// pre-built training/eval graphs, and an optimizer graph. The numeric engine
// sits behind the Module and Optimizer interfaces so it can be swapped or
// stubbed.
package trainer

import "github.com/crimson-sun/menagerie/internal/model"

// Module is one trainable model instance bound to checkpoint state. Step runs
// forward and backward over a batch, leaving gradients in the checkpoint
// state and returning the scalar loss.
type Module interface {
	Step(batch model.Batch) (float32, error)
	ResetGrad() error
	Export(path string, outputNames []string) error
	SaveCheckpoint(path string) error
	Close() error
}

// Optimizer applies one parameter update from the gradients currently held
// in the checkpoint state.
type Optimizer interface {
	Step() error
}
