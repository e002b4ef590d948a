// Package preprocess turns image files into the fixed-shape normalized
// tensors the training and inference graphs expect: center square crop,
// resize to 224x224, planar channel layout, ImageNet mean/std normalization.
package preprocess

import (
	"fmt"
	"image"
	"os"

	// Register stdlib decoders.
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/crimson-sun/menagerie/internal/model"
)

// ImageNet channel statistics, RGB order. The checkpoint was pre-trained
// with these exact constants; changing them invalidates the model.
var (
	imageNetMean = [model.Channels]float32{0.485, 0.456, 0.406}
	imageNetStd  = [model.Channels]float32{0.229, 0.224, 0.225}
)

// FromFile decodes the image at path and preprocesses it into a tensor.
func FromFile(path string) (model.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("preprocess: decoding %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage preprocesses an already-decoded image. Non-RGB inputs (grayscale,
// paletted, alpha) are converted to RGB first; alpha is dropped.
func FromImage(img image.Image) model.Tensor {
	rgba := toRGBA(img)
	crop := CenterSquare(rgba.Bounds())

	dst := image.NewRGBA(image.Rect(0, 0, model.Width, model.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), rgba, crop, draw.Src, nil)

	return normalize(dst)
}

// CenterSquare returns the centered square crop of r with side
// min(width, height). For a square r it returns r unchanged. Odd margins
// truncate, leaving the extra row or column on the far side.
func CenterSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w > h {
		off := (w - h) / 2
		return image.Rect(r.Min.X+off, r.Min.Y, r.Min.X+off+h, r.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(r.Min.X, r.Min.Y+off, r.Max.X, r.Min.Y+off+w)
}

// normalize converts the 224x224 RGBA image to a planar CHW tensor: scale
// 8-bit channels to [0,1], then subtract mean and divide by std per channel.
func normalize(img *image.RGBA) model.Tensor {
	t := make(model.Tensor, model.TensorLen)
	const plane = model.Height * model.Width

	for y := 0; y < model.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < model.Width; x++ {
			idx := y*model.Width + x
			for c := 0; c < model.Channels; c++ {
				v := float32(row[x*4+c]) / 255.0
				t[c*plane+idx] = (v - imageNetMean[c]) / imageNetStd[c]
			}
		}
	}
	return t
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}
