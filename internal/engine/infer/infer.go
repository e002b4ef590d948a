// Package infer runs the exported inference-only model over held-out images
// and turns raw logits into per-class percentages.
package infer

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/menagerie/internal/engine/ortenv"
	"github.com/crimson-sun/menagerie/internal/model"
)

// Engine wraps a DynamicAdvancedSession over the exported classifier.
type Engine struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	numClasses int64
}

// NewEngine loads the exported ONNX model and creates an inference session.
// It validates the model's input/output tensor shapes against the expected
// image and class dimensions.
func NewEngine(libPath, modelPath string) (*Engine, error) {
	if err := ortenv.Init(libPath); err != nil {
		return nil, fmt.Errorf("infer: failed to initialize runtime: %w", err)
	}

	// Inspect model to discover tensor names and shapes.
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("infer: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("infer: expected 1 model input, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("infer: model has no outputs")
	}

	inDims := inputs[0].Dimensions
	if len(inDims) != 4 || inDims[1] != model.Channels ||
		inDims[2] != model.Height || inDims[3] != model.Width {
		return nil, fmt.Errorf("infer: expected input shape [N %d %d %d], got %v",
			model.Channels, model.Height, model.Width, inDims)
	}

	outDims := outputs[0].Dimensions
	if len(outDims) != 2 {
		return nil, fmt.Errorf("infer: expected 2D logit output, got %v", outDims)
	}
	numClasses := outDims[1]
	if numClasses != model.NumLabels {
		return nil, fmt.Errorf("infer: model predicts %d classes, want %d", numClasses, model.NumLabels)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("infer: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("infer: failed to create session: %w", err)
	}

	return &Engine{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		numClasses: numClasses,
	}, nil
}

// Scores runs a single image through the model and returns the raw logits,
// one per class.
func (e *Engine) Scores(t model.Tensor) ([]float32, error) {
	if len(t) != model.TensorLen {
		return nil, fmt.Errorf("infer: tensor has %d elements, want %d", len(t), model.TensorLen)
	}

	shape := ort.NewShape(1, model.Channels, model.Height, model.Width)
	input, err := ort.NewTensor(shape, []float32(t))
	if err != nil {
		return nil, fmt.Errorf("infer: failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, e.numClasses))
	if err != nil {
		return nil, fmt.Errorf("infer: failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	err = e.session.Run([]ort.Value{input}, []ort.Value{output})
	if err != nil {
		return nil, fmt.Errorf("infer: inference failed: %w", err)
	}

	// Copy data out before tensor is destroyed.
	src := output.GetData()
	logits := make([]float32, len(src))
	copy(logits, src)
	return logits, nil
}

// Close releases the ONNX session resources.
func (e *Engine) Close() error {
	return e.session.Destroy()
}
