// Command calibrate is an interactive HSV tuning tool for the fire
// classifier. It shows the live color mask for an adjustable HSV band next
// to the camera feed so an operator can isolate flame colors in their
// lighting conditions, then prints a fire.Band snippet to paste into a
// Config.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"

	"gocv.io/x/gocv"

	"github.com/firewatch-ai/go-fire/fire"
)

func main() {
	var device int
	flag.IntVar(&device, "device", 0, "Video capture device ID")
	flag.Parse()

	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		log.Fatalf("error opening capture device %d: %v", device, err)
	}
	defer webcam.Close()

	window := gocv.NewWindow("Fire Calibrator")
	defer window.Close()

	// Start from the default fire band's primary range.
	start := fire.DefaultConfig().FireBands[0]
	hMin := window.CreateTrackbar("H Min", 180)
	hMin.SetPos(int(start.HueLo))
	hMax := window.CreateTrackbar("H Max", 180)
	hMax.SetPos(int(start.HueHi))
	sMin := window.CreateTrackbar("S Min", 255)
	sMin.SetPos(int(start.SatLo))
	sMax := window.CreateTrackbar("S Max", 255)
	sMax.SetPos(int(start.SatHi))
	vMin := window.CreateTrackbar("V Min", 255)
	vMin.SetPos(int(start.ValLo))
	vMax := window.CreateTrackbar("V Max", 255)
	vMax.SetPos(int(start.ValHi))

	fmt.Println("Fire detection calibrator")
	fmt.Println("  - adjust the sliders until only the target color survives in the mask")
	fmt.Println("  - press 's' to print the band, 'q' to quit")

	img := gocv.NewMat()
	defer img.Close()
	scaled := gocv.NewMat()
	defer scaled.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	maskBGR := gocv.NewMat()
	defer maskBGR.Close()
	sideBySide := gocv.NewMat()
	defer sideBySide.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(5, 5))
	defer kernel.Close()

	for {
		if ok := webcam.Read(&img); !ok {
			log.Fatalf("cannot read device %d", device)
		}
		if img.Empty() {
			continue
		}

		band := fire.Band{
			HueLo: float64(hMin.GetPos()), HueHi: float64(hMax.GetPos()),
			SatLo: float64(sMin.GetPos()), SatHi: float64(sMax.GetPos()),
			ValLo: float64(vMin.GetPos()), ValHi: float64(vMax.GetPos()),
		}

		gocv.Resize(img, &scaled, image.Pt(640, 480), 0, 0, gocv.InterpolationLinear)
		gocv.CvtColor(scaled, &hsv, gocv.ColorBGRToHSV)
		gocv.InRangeWithScalar(hsv, band.Lower(), band.Upper(), &mask)
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

		gocv.CvtColor(mask, &maskBGR, gocv.ColorGrayToBGR)
		gocv.Hconcat(scaled, maskBGR, &sideBySide)

		label := fmt.Sprintf("H:%.0f-%.0f S:%.0f-%.0f V:%.0f-%.0f px:%d",
			band.HueLo, band.HueHi, band.SatLo, band.SatHi, band.ValLo, band.ValHi,
			gocv.CountNonZero(mask))
		gocv.PutText(&sideBySide, label, image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.6, colorGreen(), 1)

		window.IMShow(sideBySide)
		switch window.WaitKey(1) {
		case 'q':
			return
		case 's':
			fmt.Printf("\nfire.Band{HueLo: %.0f, HueHi: %.0f, SatLo: %.0f, SatHi: %.0f, ValLo: %.0f, ValHi: %.0f}\n\n",
				band.HueLo, band.HueHi, band.SatLo, band.SatHi, band.ValLo, band.ValHi)
		}
	}
}

func colorGreen() color.RGBA {
	return color.RGBA{G: 255}
}
