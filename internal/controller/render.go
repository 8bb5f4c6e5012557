package controller

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/overlay"
)

// drawState renders the debug overlay for one processed frame.
func drawState(img *gocv.Mat, det *detector.Detection, st State, v Variant) {
	lines := []string{fmt.Sprintf("%s  frame %d", v.Name, st.Frame)}

	switch v.Position {
	case PositionBody:
		overlay.Pose(img, det.FirstPose())
		if st.MidY != nil {
			overlay.HLine(img, *st.MidY-v.Session.Band.Jump, overlay.Yellow)
			overlay.HLine(img, *st.MidY+v.Session.Band.Crouch, overlay.Yellow)
		}
		lines = append(lines,
			fmt.Sprintf("session: %s  joined %d/%d", st.Session, st.JoinCount, v.Session.JoinFrames),
			"posture: "+st.Posture,
		)
	default:
		overlay.Hand(img, det.FirstHand())
		switch v.Position {
		case PositionBanded:
			overlay.Bands(img, v.Bands.Low, v.Bands.High)
		case PositionRelative:
			overlay.Bands(img, v.Relative.Bands.Low, v.Relative.Bands.High)
			if st.Cursor != nil {
				overlay.Cursor(img, st.Cursor[0], st.Cursor[1])
			}
		}
		if st.HandSeen {
			lines = append(lines, "fingers: "+st.Fingers)
		} else {
			lines = append(lines, "no hand")
		}
		lines = append(lines, "gesture: "+st.Gesture, "move: "+st.Directions)
	}

	held := make([]string, len(st.Pressed))
	for i, a := range st.Pressed {
		held[i] = string(a)
	}
	lines = append(lines, "keys: "+strings.Join(held, " "), "ESC to quit")

	overlay.Text(img, lines...)
}
