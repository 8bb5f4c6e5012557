// Package overlay draws the debug overlay on camera frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/cvgames/internal/detector"
)

var (
	Green  = color.RGBA{0, 255, 0, 255}
	Red    = color.RGBA{0, 0, 255, 255}
	Yellow = color.RGBA{0, 255, 255, 255}
	White  = color.RGBA{255, 255, 255, 255}
	Gray   = color.RGBA{128, 128, 128, 255}
)

// handConnections are the bone pairs of the 21-point hand model.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// poseConnections is the upper-body subset of the 33-point pose model.
var poseConnections = [][2]int{
	{detector.LeftShoulder, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftElbow}, {detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow}, {detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.LeftHip}, {detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.RightHip},
}

func pt(p detector.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

// Hand draws the hand skeleton.
func Hand(img *gocv.Mat, h *detector.HandLandmarks) {
	if h == nil {
		return
	}
	px := h.Pixels(img.Cols(), img.Rows())
	for _, c := range handConnections {
		gocv.Line(img, pt(px[c[0]]), pt(px[c[1]]), Green, 2)
	}
	for _, p := range px {
		gocv.Circle(img, pt(p), 3, Red, -1)
	}
}

// Pose draws the upper-body skeleton.
func Pose(img *gocv.Mat, p *detector.PoseLandmarks) {
	if p == nil {
		return
	}
	w, h := img.Cols(), img.Rows()
	for _, c := range poseConnections {
		a, b := p.Points[c[0]].Pixel(w, h), p.Points[c[1]].Pixel(w, h)
		gocv.Line(img, pt(a), pt(b), Green, 2)
	}
	for _, i := range []int{detector.LeftWrist, detector.RightWrist} {
		gocv.Circle(img, pt(p.Points[i].Pixel(w, h)), 6, Yellow, -1)
	}
}

// Bands draws the low and high split lines of both axes.
func Bands(img *gocv.Mat, low, high float64) {
	w, h := img.Cols(), img.Rows()
	for _, f := range []float64{low, high} {
		x := int(f * float64(w))
		y := int(f * float64(h))
		gocv.Line(img, image.Pt(x, 0), image.Pt(x, h), Gray, 1)
		gocv.Line(img, image.Pt(0, y), image.Pt(w, y), Gray, 1)
	}
}

// Cursor marks a normalized cursor position.
func Cursor(img *gocv.Mat, x, y float64) {
	c := image.Pt(int(x*float64(img.Cols())), int(y*float64(img.Rows())))
	gocv.Circle(img, c, 10, Yellow, 2)
}

// HLine draws a horizontal reference line at pixel row y.
func HLine(img *gocv.Mat, y float64, c color.RGBA) {
	gocv.Line(img, image.Pt(0, int(y)), image.Pt(img.Cols(), int(y)), c, 1)
}

// Text writes lines top-left, one per row.
func Text(img *gocv.Mat, lines ...string) {
	for i, l := range lines {
		gocv.PutText(img, l, image.Pt(10, 25+i*25), gocv.FontHersheyPlain, 1.4, White, 2)
	}
}
