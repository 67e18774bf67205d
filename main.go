package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/firewatch-ai/go-fire/fire"
	"github.com/firewatch-ai/go-fire/profiler"
	"github.com/firewatch-ai/go-fire/util"
	"github.com/firewatch-ai/go-fire/vision"
)

const (
	// deviceID is the default video capture device.
	deviceID = 0
	// processWidth/processHeight is the working resolution frames are
	// scaled to before classification.
	processWidth  = 640
	processHeight = 480
)

var supportedVideoExtensions = []string{".mp4", ".avi", ".mov"}

// InputType represents the kind of source being processed.
type InputType int

const (
	InputCamera InputType = iota
	InputVideo
	InputFrameDir
)

// InputConfig holds the resolved input source.
type InputConfig struct {
	Type     InputType
	Path     string
	DeviceID int
}

func main() {
	var (
		videoPath         string
		framesDir         string
		strict            bool
		minArea           float64
		consensusWindow   int
		motionThreshold   float64
		alertCooldown     time.Duration
		modelPath         string
		showVisualization bool
	)
	flag.StringVar(&videoPath, "video", "", "Path to video file (.mp4, .avi, .mov)")
	flag.StringVar(&framesDir, "frames-dir", "", "Directory of still frames to process in sequence")
	flag.BoolVar(&strict, "strict", false, "Use the strict low-false-positive tuning")
	flag.Float64Var(&minArea, "min-area", 0, "Override minimum fire area in pixels")
	flag.IntVar(&consensusWindow, "consensus", 0, "Override consensus window (consecutive positive frames)")
	flag.Float64Var(&motionThreshold, "motion-threshold", 0, "Override minimum motion ratio")
	flag.DurationVar(&alertCooldown, "alert-cooldown", fire.DefaultAlertCooldown, "Minimum spacing between alert events")
	flag.StringVar(&modelPath, "fire-model", "", "Optional ONNX fire model for CNN verification of alerts")
	flag.BoolVar(&showVisualization, "show-window", false, "Show visualization window")
	flag.Parse()

	inputConfig, err := validateInputFlags(videoPath, framesDir)
	if err != nil {
		log.Fatal(err)
	}

	cfg := fire.DefaultConfig()
	if strict {
		cfg = fire.StrictConfig()
	}
	if minArea > 0 {
		cfg.MinFireArea = minArea
	}
	if consensusWindow > 0 {
		cfg.ConsensusWindow = consensusWindow
	}
	if motionThreshold > 0 {
		cfg.MinMotionRatio = motionThreshold
	}

	classifier, err := fire.New(cfg)
	if err != nil {
		log.Fatalf("classifier setup failed: %v", err)
	}
	defer classifier.Close()

	alerter := fire.NewAlerter(alertCooldown)

	var verifier *vision.Verifier
	if modelPath != "" {
		verifier, err = vision.NewVerifier(vision.DefaultConfig(modelPath))
		if err != nil {
			fmt.Printf("⚠️  CNN verification disabled: %v\n", err)
		} else {
			defer verifier.Close()
			fmt.Printf("✅ CNN fire verifier loaded: %s\n", modelPath)
		}
	}

	prof := profiler.New(profiler.Options{ReportInterval: 2 * time.Second})
	prof.AddCollector(classifier)
	prof.Start()
	defer prof.Stop()

	fmt.Printf("\n🔥 Fire Detection System Started\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("   Mode: %s\n", cfg.Mode)
	fmt.Printf("   Fire area: %.0f-%.0f px\n", cfg.MinFireArea, cfg.MaxFireArea)
	fmt.Printf("   Motion ratio: %.2f | Consensus window: %d frames\n",
		cfg.MinMotionRatio, cfg.ConsensusWindow)
	fmt.Printf("   Input: %s\n", describeInput(inputConfig))
	fmt.Printf("   CNN verification: %t | Window: %t\n", verifier != nil, showVisualization)
	fmt.Printf("=====================================\n\n")

	var window *gocv.Window
	if showVisualization {
		window = gocv.NewWindow("Fire Detection")
		defer window.Close()
	}

	switch inputConfig.Type {
	case InputFrameDir:
		runFrameDir(inputConfig.Path, classifier, alerter, verifier, prof, window)
	default:
		runCapture(inputConfig, classifier, alerter, verifier, prof, window)
	}
}

// runCapture processes a live camera or a video file until it ends or the
// user quits.
func runCapture(
	input *InputConfig,
	classifier *fire.Classifier,
	alerter *fire.Alerter,
	verifier *vision.Verifier,
	prof *profiler.RuntimeProfiler,
	window *gocv.Window,
) {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	switch input.Type {
	case InputCamera:
		capture, err = gocv.OpenVideoCapture(input.DeviceID)
		if err != nil {
			log.Fatalf("error opening capture device %d: %v", input.DeviceID, err)
		}
	case InputVideo:
		capture, err = gocv.OpenVideoCapture(input.Path)
		if err != nil {
			log.Fatalf("error opening video %s: %v", input.Path, err)
		}
	}
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()
	scaled := gocv.NewMat()
	defer scaled.Close()

	for {
		if ok := capture.Read(&img); !ok {
			if input.Type == InputVideo {
				fmt.Printf("End of video: %s\n", input.Path)
			} else {
				fmt.Printf("Device closed: %d\n", input.DeviceID)
			}
			return
		}
		if img.Empty() {
			continue
		}

		gocv.Resize(img, &scaled, image.Pt(processWidth, processHeight), 0, 0, gocv.InterpolationLinear)
		if quit := processFrame(scaled, classifier, alerter, verifier, prof, window); quit {
			return
		}
	}
}

// runFrameDir replays a recorded frame sequence through the classifier.
func runFrameDir(
	dir string,
	classifier *fire.Classifier,
	alerter *fire.Alerter,
	verifier *vision.Verifier,
	prof *profiler.RuntimeProfiler,
	window *gocv.Window,
) {
	frames, err := util.LoadFrameSequence(dir)
	if err != nil {
		log.Fatalf("error loading frames: %v", err)
	}
	fmt.Printf("Replaying %d frames from %s\n", len(frames), dir)

	scaled := gocv.NewMat()
	defer scaled.Close()

	for _, frame := range frames {
		img, err := gocv.IMDecode(frame.Data, gocv.IMReadColor)
		if err != nil || img.Empty() {
			fmt.Printf("skipping unreadable frame %s\n", frame.Path)
			continue
		}

		gocv.Resize(img, &scaled, image.Pt(processWidth, processHeight), 0, 0, gocv.InterpolationLinear)
		quit := processFrame(scaled, classifier, alerter, verifier, prof, window)
		img.Close()
		if quit {
			return
		}
	}
}

// processFrame classifies one frame, draws the overlay, and emits alerts.
// Returns true when the user asked to quit via the visualization window.
func processFrame(
	img gocv.Mat,
	classifier *fire.Classifier,
	alerter *fire.Alerter,
	verifier *vision.Verifier,
	prof *profiler.RuntimeProfiler,
	window *gocv.Window,
) bool {
	stop := prof.StartStage("classify")
	verdict := classifier.Process(img)
	stop()

	if event := alerter.Observe(verdict); event != nil {
		confirmed := true
		if verifier != nil {
			confirmed = verifyEvent(img, verifier, prof)
		}
		if confirmed {
			fmt.Printf("[%s] 🔥 FIRE ALERT %s confidence=%.2f level=%s\n",
				event.Time.Format("15:04:05.000"), event.ID, event.Confidence, event.Level)
		} else {
			fmt.Printf("[%s] ⚠️  heuristic alert %s rejected by CNN verifier\n",
				event.Time.Format("15:04:05.000"), event.ID)
		}
	}

	if window != nil {
		drawOverlay(&img, verdict)
		window.IMShow(img)
		if window.WaitKey(1) == 'q' {
			return true
		}
	}
	return false
}

// verifyEvent runs the CNN verifier over the current frame.
func verifyEvent(img gocv.Mat, verifier *vision.Verifier, prof *profiler.RuntimeProfiler) bool {
	stop := prof.StartStage("verify")
	defer stop()

	goImg, err := img.ToImage()
	if err != nil {
		fmt.Printf("verifier: cannot convert frame: %v\n", err)
		return true // fail open: the heuristics already agreed
	}
	score, isFire, err := verifier.Verify(goImg)
	if err != nil {
		fmt.Printf("verifier: inference error: %v\n", err)
		return true
	}
	prof.Record("cnn_score", float64(score))
	return isFire
}

// drawOverlay paints candidate boxes and status text onto the frame.
func drawOverlay(img *gocv.Mat, verdict fire.Verdict) {
	red := color.RGBA{R: 255}
	gray := color.RGBA{R: 200, G: 200, B: 200}

	for _, region := range verdict.Regions {
		gocv.Rectangle(img, region, red, 2)
	}

	gocv.PutText(img, fmt.Sprintf("Motion: %.0f%%", verdict.MotionRatio*100),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, gray, 1)
	gocv.PutText(img, fmt.Sprintf("Flicker: %t", verdict.FlickerPresent),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.6, gray, 1)
	gocv.PutText(img, fmt.Sprintf("Conf: %.0f%% [%s]", verdict.Confidence*100, verdict.AlertLevel),
		image.Pt(10, 90), gocv.FontHersheySimplex, 0.6, gray, 1)

	if verdict.IsFire {
		gocv.Rectangle(img, image.Rect(5, 5, processWidth-5, processHeight-5), red, 3)
		gocv.PutText(img, "FIRE DETECTED!", image.Pt(120, 240),
			gocv.FontHersheySimplex, 2.0, red, 3)
	}
}

// validateInputFlags resolves the input source from the mutually exclusive
// source flags. With neither set, the default camera is used.
func validateInputFlags(videoPath, framesDir string) (*InputConfig, error) {
	if videoPath != "" && framesDir != "" {
		return nil, fmt.Errorf("cannot specify both --video and --frames-dir")
	}
	if videoPath == "" && framesDir == "" {
		return &InputConfig{Type: InputCamera, DeviceID: deviceID}, nil
	}

	if videoPath != "" {
		if err := validateFile(videoPath, supportedVideoExtensions); err != nil {
			return nil, fmt.Errorf("video validation error: %w", err)
		}
		return &InputConfig{Type: InputVideo, Path: videoPath}, nil
	}

	info, err := os.Stat(framesDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("frames directory not found: %s", framesDir)
	}
	return &InputConfig{Type: InputFrameDir, Path: framesDir}, nil
}

// validateFile checks that the file exists and carries a supported extension.
func validateFile(filePath string, supportedExtensions []string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range supportedExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported file extension: %s (supported: %v)", ext, supportedExtensions)
}

func describeInput(input *InputConfig) string {
	switch input.Type {
	case InputVideo:
		return fmt.Sprintf("video %s", input.Path)
	case InputFrameDir:
		return fmt.Sprintf("frame directory %s", input.Path)
	default:
		return fmt.Sprintf("camera device %d", input.DeviceID)
	}
}
