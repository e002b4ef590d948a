package infer

import (
	"os"
	"testing"

	"github.com/crimson-sun/menagerie/internal/model"
)

const testModelPath = "../../../inference_artifacts/mobilenetv2_inference.onnx"

func skipIfNoModel(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(testModelPath); os.IsNotExist(err) {
		t.Skip("exported model not found; run 'menagerie train' first")
	}
}

func TestEngineLoad(t *testing.T) {
	skipIfNoModel(t)

	engine, err := NewEngine(os.Getenv("MENAGERIE_ORT_LIB"), testModelPath)
	if err != nil {
		t.Fatalf("failed to load inference engine: %v", err)
	}
	defer engine.Close()

	if engine.numClasses != model.NumLabels {
		t.Errorf("expected %d classes, got %d", model.NumLabels, engine.numClasses)
	}
	t.Logf("input name: %s", engine.inputName)
	t.Logf("output name: %s", engine.outputName)
}

func TestEngineScores(t *testing.T) {
	skipIfNoModel(t)

	engine, err := NewEngine(os.Getenv("MENAGERIE_ORT_LIB"), testModelPath)
	if err != nil {
		t.Fatalf("failed to load inference engine: %v", err)
	}
	defer engine.Close()

	logits, err := engine.Scores(make(model.Tensor, model.TensorLen))
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(logits) != model.NumLabels {
		t.Fatalf("expected %d logits, got %d", model.NumLabels, len(logits))
	}
}

func TestEngineScoresBadTensor(t *testing.T) {
	e := &Engine{numClasses: model.NumLabels}
	if _, err := e.Scores(make(model.Tensor, 7)); err == nil {
		t.Fatal("expected error for wrong tensor length")
	}
}
