// Package ortenv manages global ONNX Runtime initialization, shared by the
// training and inference sessions (process-wide singleton).
package ortenv

import (
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var env struct {
	once sync.Once
	err  error
}

// Init initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect. An empty libPath keeps the
// binding's platform default shared-library location.
func Init(libPath string) error {
	env.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		env.err = ort.InitializeEnvironment()
	})
	return env.err
}
