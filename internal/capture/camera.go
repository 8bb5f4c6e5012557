// Package capture opens webcams with GoCV and hands frames to the controllers.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480

	// maxEmptyReads is how many empty frames in a row a device may return
	// before the stream counts as ended. Some webcams deliver a few while
	// they warm up.
	maxEmptyReads = 5
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device stops delivering frames.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source. ReadFrame transfers ownership of the Mat to the caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
	// Size returns the resolution the device actually delivers once open,
	// and the requested one before that.
	Size() (width, height int)
}

type cameraImpl struct {
	deviceID int
	width    int
	height   int
	fps      int

	mu      sync.Mutex
	vc      *gocv.VideoCapture
	running bool
	empty   int
}

// NewCamera returns a camera for deviceID at the default 640x480.
func NewCamera(deviceID int) Camera {
	return NewCameraWithSize(deviceID, DefaultWidth, DefaultHeight)
}

// NewCameraWithSize returns a camera that requests width x height. The device
// may pick another size; Size reports what it chose. Non-positive sizes fall
// back to the defaults.
func NewCameraWithSize(deviceID, width, height int) Camera {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &cameraImpl{
		deviceID: deviceID,
		width:    width,
		height:   height,
		fps:      DefaultFPS,
	}
}

func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.deviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: device unavailable", c.deviceID)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	if w, h := int(vc.Get(gocv.VideoCaptureFrameWidth)), int(vc.Get(gocv.VideoCaptureFrameHeight)); w > 0 && h > 0 {
		c.width, c.height = w, h
	}

	c.vc = vc
	c.running = true
	c.empty = 0
	return nil
}

func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = false
	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	return err
}

// ReadFrame blocks until the device delivers a frame. It returns ErrNoFrame
// once the device has produced maxEmptyReads empty frames in a row.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	for {
		if ok := c.vc.Read(&mat); ok && !mat.Empty() {
			c.empty = 0
			return &mat, nil
		}
		c.empty++
		if c.empty >= maxEmptyReads {
			mat.Close()
			return nil, ErrNoFrame
		}
	}
}

// SetFPS requests a capture rate. Non-positive values are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.vc != nil {
		c.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *cameraImpl) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}
