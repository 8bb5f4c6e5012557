// Package controller runs the per-frame pipeline of a game controller:
// capture, landmark detection, gesture and position mapping, key injection and
// the debug overlay.
package controller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/kataras/golog"
	"gocv.io/x/gocv"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/inject"
	"github.com/ayusman/cvgames/internal/store"
)

var log = golog.Child("[controller]")

// keyEscape is the key code returned by gocv.Window.WaitKey for ESC.
const keyEscape = 27

// End reasons recorded with a session.
const (
	ReasonEscape    = "escape"
	ReasonCancelled = "cancelled"
	ReasonStreamEnd = "end of stream"
	ReasonDetector  = "detector error"
	ReasonPanic     = "panic"
)

// Publisher receives per-frame state for the debug server.
type Publisher interface {
	PublishState(v any)
	WantsFrames() bool
	PublishFrame(jpeg []byte)
}

// Config holds everything a controller run needs besides its collaborators.
type Config struct {
	Variant  Variant
	CameraID int
	// Play enables input injection. The caller picks the injector to match.
	Play bool
	// ShowWindow opens the overlay window; ESC in it quits.
	ShowWindow bool
	Store      *store.Store
	Publisher  Publisher
	// Clock is used for key timing. Defaults to time.Now.
	Clock func() time.Time
}

// Controller owns one camera, one detector and one processor for the
// lifetime of a run.
type Controller struct {
	config    Config
	camera    capture.Camera
	detector  detector.Detector
	processor *Processor
	sessionID string
}

// New creates a controller. The camera is opened by Run.
func New(config Config, cam capture.Camera, det detector.Detector, inj inject.Injector) *Controller {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &Controller{
		config:    config,
		camera:    cam,
		detector:  det,
		processor: NewProcessor(config.Variant, inj),
	}
}

// Processor returns the controller's processor.
func (c *Controller) Processor() *Processor {
	return c.processor
}

// SessionID returns the stored session ID of the current or last run.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Run processes frames until ESC, ctx cancellation, the end of the camera
// stream or a detector failure. Whatever ends the run, pressed keys are
// released before the detector, window and camera are closed.
func (c *Controller) Run(ctx context.Context) (err error) {
	name := c.config.Variant.Name
	if err := c.camera.Open(); err != nil {
		c.detector.Close()
		return fmt.Errorf("failed to open camera %d: %w", c.config.CameraID, err)
	}

	var window *gocv.Window
	reason := ReasonStreamEnd

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s: panic in frame loop: %v\n%s", name, r, debug.Stack())
			err = fmt.Errorf("panic in frame loop: %v", r)
			reason = ReasonPanic
		}

		if n := c.processor.Drain(); n > 0 {
			log.Infof("%s: released %d held keys", name, n)
		}
		if cerr := c.detector.Close(); cerr != nil {
			log.Warnf("%s: closing detector: %v", name, cerr)
		}
		if window != nil {
			window.Close()
		}
		if cerr := c.camera.Close(); cerr != nil {
			log.Warnf("%s: closing camera: %v", name, cerr)
		}
		c.finishSession(reason)
		log.Infof("%s: stopped (%s) after %d frames", name, reason, c.processor.Frames())
	}()

	if c.config.ShowWindow {
		window = gocv.NewWindow(name)
	}
	c.startSession()

	w, h := c.camera.Size()
	log.Infof("%s: running on camera %d at %dx%d (play=%v)", name, c.config.CameraID, w, h, c.config.Play)

	for {
		select {
		case <-ctx.Done():
			reason = ReasonCancelled
			return nil
		default:
		}

		frame, rerr := c.camera.ReadFrame()
		if rerr != nil {
			log.Infof("%s: camera stream ended: %v", name, rerr)
			reason = ReasonStreamEnd
			return nil
		}

		quit, ferr := func() (bool, error) {
			defer frame.Close()
			return c.step(frame, window)
		}()
		if ferr != nil {
			reason = ReasonDetector
			return ferr
		}
		if quit {
			reason = ReasonEscape
			return nil
		}
	}
}

// step runs one iteration of the pipeline on frame. It reports whether the
// user asked to quit.
func (c *Controller) step(frame *gocv.Mat, window *gocv.Window) (bool, error) {
	gocv.Flip(*frame, frame, 1)
	c.processor.SetFrameSize(frame.Cols(), frame.Rows())

	det, err := c.detector.Detect(frame)
	if err != nil {
		log.Errorf("%s: detector failed: %v\n%s", c.config.Variant.Name, err, debug.Stack())
		return false, fmt.Errorf("detect: %w", err)
	}

	st := c.processor.Step(det, c.config.Clock())

	rendering := window != nil || (c.config.Publisher != nil && c.config.Publisher.WantsFrames())
	if rendering {
		drawState(frame, det, st, c.config.Variant)
	}

	if p := c.config.Publisher; p != nil {
		p.PublishState(st)
		if p.WantsFrames() {
			if buf, err := gocv.IMEncode(".jpg", *frame); err == nil {
				jpeg := append([]byte(nil), buf.GetBytes()...)
				buf.Close()
				p.PublishFrame(jpeg)
			}
		}
	}

	if window != nil {
		window.IMShow(*frame)
		if window.WaitKey(1) == keyEscape {
			return true, nil
		}
	}
	return false, nil
}

func (c *Controller) startSession() {
	if c.config.Store == nil {
		return
	}
	mode := store.ModeTest
	if c.config.Play {
		mode = store.ModePlay
	}
	sess := &store.Session{
		Variant: c.config.Variant.Name,
		Camera:  c.config.CameraID,
		Mode:    mode,
	}
	if err := c.config.Store.Sessions().Create(sess); err != nil {
		log.Warnf("failed to record session: %v", err)
		return
	}
	c.sessionID = sess.ID
}

func (c *Controller) finishSession(reason string) {
	if c.config.Store == nil || c.sessionID == "" {
		return
	}
	repo := c.config.Store.Sessions()
	stats := c.processor.Stats()
	if err := repo.Finish(c.sessionID, time.Now(), c.processor.Frames(), stats.Presses, reason); err != nil {
		log.Warnf("failed to finish session: %v", err)
	}
	if counts := c.processor.ActionCounts(); len(counts) > 0 {
		if err := repo.AddActionCounts(c.sessionID, counts); err != nil {
			log.Warnf("failed to record action counts: %v", err)
		}
	}
}
