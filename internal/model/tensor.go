package model

// Tensor dimensions for a single preprocessed image, planar (channel, height,
// width) order, row-major within each plane.
const (
	Channels = 3
	Height   = 224
	Width    = 224

	// TensorLen is the element count of one image tensor.
	TensorLen = Channels * Height * Width
)

// Tensor holds one normalized image as float32 values in CHW order. Always
// exactly TensorLen elements.
type Tensor []float32

// Batch is one training step's worth of inputs: one image tensor per class,
// concatenated in class-index order, with the parallel label ids.
type Batch struct {
	Data   []float32 // len(Labels) * TensorLen elements
	Labels []int64
}

// Size returns the number of images in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// LabeledImageSet maps each class label to the ordered list of image paths
// found for it. Built once by the dataset indexer, read-only afterwards.
type LabeledImageSet map[Label][]string

// Prediction holds the softmax percentages for one test image, indexed by
// class id. Percent values are in [0, 100] and sum to 100.
type Prediction struct {
	ID      string
	Percent [NumLabels]float32
}
