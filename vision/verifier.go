package vision

import (
	"image"
	"os"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Verifier wraps an ONNX Runtime session for the binary fire classifier.
// Tensors are allocated once and reused across Verify calls, so a Verifier
// is not safe for concurrent use. Always call Close.
type Verifier struct {
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	output    *ort.Tensor[float32]
	size      int
	threshold float32
}

// NewVerifier loads the model and prepares the reusable IO tensors.
func NewVerifier(cfg Config) (*Verifier, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "fire model %s", cfg.ModelPath)
	}
	if cfg.InputSize <= 0 {
		return nil, errors.Errorf("input size must be positive, got %d", cfg.InputSize)
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime environment")
		}
	}

	inputShape := ort.NewShape(1, 3, int64(cfg.InputSize), int64(cfg.InputSize))
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "allocate input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "allocate output tensor")
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrapf(err, "create session for %s", cfg.ModelPath)
	}

	return &Verifier{
		session:   session,
		input:     input,
		output:    output,
		size:      cfg.InputSize,
		threshold: cfg.ScoreThreshold,
	}, nil
}

// Verify scores one frame and reports whether the network considers it fire.
func (v *Verifier) Verify(img image.Image) (float32, bool, error) {
	if img == nil {
		return 0, false, errors.New("nil image")
	}

	v.prepareInput(img)
	if err := v.session.Run(); err != nil {
		return 0, false, errors.Wrap(err, "inference failed")
	}

	score := v.output.GetData()[0]
	// Some exports omit the final sigmoid; squash raw logits so the
	// threshold stays meaningful either way.
	if score < 0 || score > 1 {
		score = sigmoid(score)
	}
	return score, score > v.threshold, nil
}

// prepareInput resizes the frame to the network's square input and fills the
// CHW tensor with [0,1] normalized RGB planes.
func (v *Verifier) prepareInput(img image.Image) {
	data := v.input.GetData()
	channelSize := v.size * v.size
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	scaled := resize.Resize(uint(v.size), uint(v.size), img, resize.Lanczos3)

	i := 0
	for y := 0; y < v.size; y++ {
		for x := 0; x < v.size; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// Close destroys the session and its tensors.
func (v *Verifier) Close() {
	if v.input != nil {
		v.input.Destroy()
		v.input = nil
	}
	if v.output != nil {
		v.output.Destroy()
		v.output = nil
	}
	if v.session != nil {
		v.session.Destroy()
		v.session = nil
	}
}
