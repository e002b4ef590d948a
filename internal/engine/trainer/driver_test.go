package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/crimson-sun/menagerie/internal/model"
)

// stubModule records the call sequence and returns a fixed loss per step.
type stubModule struct {
	calls   []string
	batches []model.Batch
	losses  []float32
	stepErr error
}

func (m *stubModule) Step(batch model.Batch) (float32, error) {
	if m.stepErr != nil {
		return 0, m.stepErr
	}
	m.calls = append(m.calls, "step")
	m.batches = append(m.batches, batch)
	loss := m.losses[(len(m.batches)-1)%len(m.losses)]
	return loss, nil
}

func (m *stubModule) ResetGrad() error {
	m.calls = append(m.calls, "reset")
	return nil
}

func (m *stubModule) Export(string, []string) error { return nil }
func (m *stubModule) SaveCheckpoint(string) error   { return nil }
func (m *stubModule) Close() error                  { return nil }

type stubOptimizer struct {
	module *stubModule
}

func (o *stubOptimizer) Step() error {
	o.module.calls = append(o.module.calls, "optimize")
	return nil
}

func fakeLoad(path string) (model.Tensor, error) {
	return make(model.Tensor, model.TensorLen), nil
}

func testSet(perClass int) model.LabeledImageSet {
	set := make(model.LabeledImageSet)
	for _, l := range model.AllLabels() {
		for i := 0; i < perClass; i++ {
			set[l] = append(set[l], fmt.Sprintf("%s-%03d.jpg", l, i))
		}
	}
	return set
}

func TestDriverRun(t *testing.T) {
	mod := &stubModule{losses: []float32{2.0, 1.0}}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 5, SamplesPerClass: 20})

	losses, err := d.Run(context.Background(), testSet(20))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(losses) != 5 {
		t.Fatalf("expected one mean loss per epoch (5), got %d", len(losses))
	}
	// Losses alternate 2, 1 per step, so every epoch mean is 1.5.
	for i, l := range losses {
		if math.Abs(l-1.5) > 1e-9 {
			t.Errorf("epoch %d: mean loss %f, want 1.5", i+1, l)
		}
	}
	if len(mod.batches) != 100 {
		t.Fatalf("expected 100 steps (5 epochs x 20 samples), got %d", len(mod.batches))
	}
}

func TestDriverCallOrder(t *testing.T) {
	mod := &stubModule{losses: []float32{1.0}}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 1, SamplesPerClass: 2})

	if _, err := d.Run(context.Background(), testSet(2)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"step", "optimize", "reset", "step", "optimize", "reset"}
	if len(mod.calls) != len(want) {
		t.Fatalf("call count %d, want %d: %v", len(mod.calls), len(want), mod.calls)
	}
	for i := range want {
		if mod.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (sequence %v)", i, mod.calls[i], want[i], mod.calls)
		}
	}
}

func TestDriverBatchLayout(t *testing.T) {
	mod := &stubModule{losses: []float32{1.0}}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 1, SamplesPerClass: 1})

	if _, err := d.Run(context.Background(), testSet(1)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	batch := mod.batches[0]
	if batch.Size() != model.NumLabels {
		t.Fatalf("batch size %d, want %d", batch.Size(), model.NumLabels)
	}
	if len(batch.Data) != model.NumLabels*model.TensorLen {
		t.Fatalf("batch data length %d, want %d", len(batch.Data), model.NumLabels*model.TensorLen)
	}
	for i, id := range batch.Labels {
		if id != int64(i) {
			t.Errorf("label id at position %d is %d, batches must follow class-index order", i, id)
		}
	}
}

func TestDriverInsufficientSamples(t *testing.T) {
	mod := &stubModule{losses: []float32{1.0}}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 1, SamplesPerClass: 20})

	set := testSet(20)
	set[model.Elephant] = set[model.Elephant][:3]

	_, err := d.Run(context.Background(), set)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}
	if len(mod.calls) != 0 {
		t.Fatalf("expected validation before any step, but saw calls %v", mod.calls)
	}
}

func TestDriverStepFailureAborts(t *testing.T) {
	stepErr := errors.New("graph execution failed")
	mod := &stubModule{losses: []float32{1.0}, stepErr: stepErr}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 3, SamplesPerClass: 5})

	_, err := d.Run(context.Background(), testSet(5))
	if !errors.Is(err, stepErr) {
		t.Fatalf("expected step error to propagate, got %v", err)
	}
}

func TestDriverLoadFailureNamesImage(t *testing.T) {
	mod := &stubModule{losses: []float32{1.0}}
	load := func(path string) (model.Tensor, error) {
		if path == "cat-000.jpg" {
			return nil, errors.New("decode failure")
		}
		return make(model.Tensor, model.TensorLen), nil
	}
	d := NewDriver(mod, &stubOptimizer{mod}, load, Config{Epochs: 1, SamplesPerClass: 1})

	_, err := d.Run(context.Background(), testSet(1))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "cat-000.jpg") {
		t.Fatalf("expected error to name the failing image, got %q", got)
	}
}

func TestDriverContextCancelled(t *testing.T) {
	mod := &stubModule{losses: []float32{1.0}}
	d := NewDriver(mod, &stubOptimizer{mod}, fakeLoad, Config{Epochs: 5, SamplesPerClass: 20})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx, testSet(20))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
