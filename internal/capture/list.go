package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultMaxProbe is how many device indices ListCameras tries by default.
const DefaultMaxProbe = 10

// Info describes a camera that opened and delivered a frame.
type Info struct {
	Index  int     `json:"index"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`
}

func (i Info) String() string {
	return fmt.Sprintf("Camera %d (%dx%d @ %.0f fps)", i.Index, i.Width, i.Height, i.FPS)
}

// ListCameras probes device indices [0, maxProbe) and returns the ones that
// open and deliver a non-empty frame.
func ListCameras(maxProbe int) []Info {
	if maxProbe <= 0 {
		maxProbe = DefaultMaxProbe
	}

	var found []Info
	for idx := 0; idx < maxProbe; idx++ {
		info, ok := probe(idx)
		if ok {
			found = append(found, info)
		}
	}
	return found
}

func probe(idx int) (Info, bool) {
	vc, err := gocv.OpenVideoCapture(idx)
	if err != nil {
		return Info{}, false
	}
	defer vc.Close()

	if !vc.IsOpened() {
		return Info{}, false
	}

	mat := gocv.NewMat()
	defer mat.Close()
	if ok := vc.Read(&mat); !ok || mat.Empty() {
		return Info{}, false
	}

	return Info{
		Index:  idx,
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
	}, true
}
