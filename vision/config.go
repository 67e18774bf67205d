// Package vision runs an optional convolutional fire classifier over frames
// that the heuristic pipeline has flagged. The network is a binary
// classifier exported to ONNX: a 224x224 RGB input and a single score
// output. The heuristic core never depends on this package; it exists to
// confirm alerts before they reach an operator.
package vision

// Config for the CNN fire verifier.
type Config struct {
	// ModelPath is the ONNX model file.
	ModelPath string
	// InputSize is the square input resolution expected by the network.
	InputSize int
	// InputName and OutputName identify the graph's IO tensors.
	InputName  string
	OutputName string
	// ScoreThreshold is the minimum score that counts as fire.
	ScoreThreshold float32
	// LibraryPath optionally points at the onnxruntime shared library when
	// it is not on the default search path.
	LibraryPath string
}

// DefaultConfig returns the settings the reference fire model was exported
// with: 224x224 input and a deliberately low 0.1 threshold, since the
// verifier only ever sees frames the heuristics already flagged.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:      modelPath,
		InputSize:      224,
		InputName:      "input",
		OutputName:     "output",
		ScoreThreshold: 0.1,
	}
}
