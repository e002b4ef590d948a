// Package dataset enumerates training images from the on-disk class layout:
// one subdirectory per class label under the dataset root, images directly
// inside it.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crimson-sun/menagerie/internal/model"
)

// Index builds the per-class image lists from root/<label>/*. Entries come
// back in lexical order (os.ReadDir sorts), so a given dataset always yields
// the same sample order. A missing class directory yields an empty list, not
// an error; the training driver reports the shortfall when it validates
// sample counts.
func Index(root string) (model.LabeledImageSet, error) {
	set := make(model.LabeledImageSet, model.NumLabels)
	for _, label := range model.AllLabels() {
		paths, err := listImages(filepath.Join(root, label.String()))
		if err != nil {
			return nil, fmt.Errorf("dataset: listing %s: %w", label, err)
		}
		set[label] = paths
	}
	return set, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
