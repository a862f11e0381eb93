// Package onnx runs the linguistic encoder and duration predictor with ONNX
// Runtime. Sessions are created once per singer and are safe for concurrent
// phrases; each Run is serialized behind a per-model mutex.
package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Init prepares the shared ONNX Runtime environment. libraryPath may be ""
// to use the default shared library lookup. Calling Init when the runtime is
// already initialized is not an error.
func Init(libraryPath string) error {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		if err.Error() == "the ONNX runtime is already initialized" {
			return nil
		}
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	return nil
}

// Shutdown releases the shared environment. Call after all sessions are
// closed.
func Shutdown() {
	_ = ort.DestroyEnvironment()
}

func destroyAll(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}

func cloneShape(s ort.Shape) []int64 {
	return append([]int64(nil), s...)
}
