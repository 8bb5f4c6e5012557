package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

const keyEsc = 27

// Preview shows a live window for the camera until ESC is pressed, the
// context is cancelled or the device stops delivering frames.
func Preview(ctx context.Context, cam Camera, title string) error {
	if err := cam.Open(); err != nil {
		return err
	}
	defer cam.Close()

	window := gocv.NewWindow(title)
	defer window.Close()

	green := color.RGBA{G: 255, A: 255}
	start := time.Now()
	frames := 0
	fps := 0.0

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}

		frames++
		if elapsed := time.Since(start); elapsed > time.Second {
			fps = float64(frames) / elapsed.Seconds()
			frames = 0
			start = time.Now()
		}

		gocv.PutText(frame, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 30), gocv.FontHersheySimplex, 1, green, 2)
		gocv.PutText(frame, "ESC to close", image.Pt(10, 70), gocv.FontHersheySimplex, 0.7, green, 2)
		window.IMShow(*frame)
		frame.Close()

		if window.WaitKey(1) == keyEsc {
			return nil
		}
	}
}
