package trainer

import (
	"fmt"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/menagerie/internal/engine/ortenv"
	"github.com/crimson-sun/menagerie/internal/model"
)

// ArtifactPaths locates the pre-built training artifacts the external
// runtime consumes. The graphs and checkpoint are produced offline; this
// code never inspects their contents.
type ArtifactPaths struct {
	Checkpoint     string
	TrainingModel  string
	EvalModel      string
	OptimizerModel string
}

// DefaultArtifacts returns the conventional artifact layout under dir.
func DefaultArtifacts(dir string) ArtifactPaths {
	return ArtifactPaths{
		Checkpoint:     filepath.Join(dir, "mobilenetv2.ckpt"),
		TrainingModel:  filepath.Join(dir, "mobilenetv2_training.onnx"),
		EvalModel:      filepath.Join(dir, "mobilenetv2_eval.onnx"),
		OptimizerModel: filepath.Join(dir, "mobilenetv2_optimizer.onnx"),
	}
}

// Session wraps an ONNX Runtime training session. The input, label, and loss
// tensors are bound once at creation; each Step copies fresh batch data into
// the bound buffers before invoking the graph.
type Session struct {
	session   *ort.TrainingSession
	inputs    *ort.Tensor[float32]
	labels    *ort.Tensor[int64]
	loss      *ort.Scalar[float32]
	batchSize int
}

// NewSession initializes the runtime if needed and creates a training
// session over the given artifacts with a fixed batch size.
func NewSession(libPath string, paths ArtifactPaths, batchSize int) (*Session, error) {
	if err := ortenv.Init(libPath); err != nil {
		return nil, fmt.Errorf("trainer: failed to initialize runtime: %w", err)
	}
	if !ort.IsTrainingSupported() {
		return nil, fmt.Errorf("trainer: onnxruntime library does not include training support")
	}

	inputs, err := ort.NewEmptyTensor[float32](ort.NewShape(
		int64(batchSize), model.Channels, model.Height, model.Width))
	if err != nil {
		return nil, fmt.Errorf("trainer: failed to create input tensor: %w", err)
	}
	labels, err := ort.NewEmptyTensor[int64](ort.NewShape(int64(batchSize)))
	if err != nil {
		inputs.Destroy()
		return nil, fmt.Errorf("trainer: failed to create label tensor: %w", err)
	}
	loss, err := ort.NewEmptyScalar[float32]()
	if err != nil {
		inputs.Destroy()
		labels.Destroy()
		return nil, fmt.Errorf("trainer: failed to create loss scalar: %w", err)
	}

	session, err := ort.NewTrainingSession(
		paths.Checkpoint,
		paths.TrainingModel,
		paths.EvalModel,
		paths.OptimizerModel,
		[]ort.Value{inputs, labels},
		[]ort.Value{loss},
		nil,
	)
	if err != nil {
		inputs.Destroy()
		labels.Destroy()
		loss.Destroy()
		return nil, fmt.Errorf("trainer: failed to create training session: %w", err)
	}

	return &Session{
		session:   session,
		inputs:    inputs,
		labels:    labels,
		loss:      loss,
		batchSize: batchSize,
	}, nil
}

// Step runs forward and backward over one batch and returns the loss.
// Gradients stay in the checkpoint state until ResetGrad.
func (s *Session) Step(batch model.Batch) (float32, error) {
	if batch.Size() != s.batchSize {
		return 0, fmt.Errorf("trainer: batch size %d does not match session batch size %d",
			batch.Size(), s.batchSize)
	}
	if len(batch.Data) != s.batchSize*model.TensorLen {
		return 0, fmt.Errorf("trainer: batch data has %d elements, want %d",
			len(batch.Data), s.batchSize*model.TensorLen)
	}

	copy(s.inputs.GetData(), batch.Data)
	copy(s.labels.GetData(), batch.Labels)

	if err := s.session.TrainStep(); err != nil {
		return 0, fmt.Errorf("trainer: train step failed: %w", err)
	}
	return s.loss.GetData(), nil
}

// ResetGrad marks gradients for reset before the next Step.
func (s *Session) ResetGrad() error {
	if err := s.session.LazyResetGrad(); err != nil {
		return fmt.Errorf("trainer: gradient reset failed: %w", err)
	}
	return nil
}

// Export writes an inference-only model containing the trained parameters,
// keeping only the named graph outputs.
func (s *Session) Export(path string, outputNames []string) error {
	if err := s.session.ExportModel(path, outputNames); err != nil {
		return fmt.Errorf("trainer: export failed: %w", err)
	}
	return nil
}

// SaveCheckpoint persists the current parameter state. Optimizer state is
// not included; a saved checkpoint resumes with fresh optimizer internals.
func (s *Session) SaveCheckpoint(path string) error {
	if err := s.session.SaveCheckpoint(path, false); err != nil {
		return fmt.Errorf("trainer: checkpoint save failed: %w", err)
	}
	return nil
}

// Optimizer returns the parameter-update facet of this session.
func (s *Session) Optimizer() Optimizer {
	return sessionOptimizer{s}
}

// Close releases the session and its bound tensors.
func (s *Session) Close() error {
	err := s.session.Destroy()
	s.inputs.Destroy()
	s.labels.Destroy()
	s.loss.Destroy()
	return err
}

type sessionOptimizer struct {
	s *Session
}

func (o sessionOptimizer) Step() error {
	if err := o.s.session.OptimizerStep(); err != nil {
		return fmt.Errorf("trainer: optimizer step failed: %w", err)
	}
	return nil
}
