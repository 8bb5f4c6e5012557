package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/config"
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/inject"
	"github.com/ayusman/cvgames/internal/keys"
	"github.com/ayusman/cvgames/internal/server"
	"github.com/ayusman/cvgames/internal/store"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func hands(h ...detector.HandLandmarks) *detector.Detection {
	return &detector.Detection{Hands: h}
}

func poses(p ...detector.PoseLandmarks) *detector.Detection {
	return &detector.Detection{Poses: p}
}

func keyEvents(rec *inject.Recorder, key string) []inject.Op {
	var ops []inject.Op
	for _, e := range rec.Events() {
		if e.Key == key {
			ops = append(ops, e.Op)
		}
	}
	return ops
}

func TestProcessor_ShootAcrossHandLoss(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Arcade(cfg.Arcade), rec)

	pointing := detector.PointingLandmarks()
	frames := []*detector.Detection{
		hands(),
		hands(pointing),
		hands(pointing),
		hands(),
		hands(pointing),
	}

	var shootOps [][]inject.Op
	for i, det := range frames {
		before := len(keyEvents(rec, "x"))
		st := p.Step(det, at(i*50))
		shootOps = append(shootOps, keyEvents(rec, "x")[before:])

		if i == 1 || i == 2 || i == 4 {
			assert.Equal(t, "shoot", st.Gesture, "frame %d", i+1)
		}
	}

	assert.Empty(t, shootOps[0], "frame 1: no hand")
	assert.Equal(t, []inject.Op{inject.OpPress}, shootOps[1], "frame 2: press")
	assert.Empty(t, shootOps[2], "frame 3: no duplicate press")
	assert.Equal(t, []inject.Op{inject.OpRelease}, shootOps[3], "frame 4: release")
	assert.Equal(t, []inject.Op{inject.OpPress}, shootOps[4], "frame 5: fresh press")

	p.Drain()
	assert.Empty(t, rec.Held())
}

func TestProcessor_SameFrameIsIdempotent(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Arcade(cfg.Arcade), rec)

	det := hands(detector.PointingLandmarks())
	p.Step(det, at(0))
	n := len(rec.Events())
	p.Step(det, at(0))

	assert.Len(t, rec.Events(), n)
}

func TestProcessor_BarrelRollPulses(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Arcade(cfg.Arcade), rec)

	palm := hands(detector.OpenPalmLandmarks())
	for ms := 0; ms <= 1500; ms += 50 {
		st := p.Step(palm, at(ms))
		require.Equal(t, "barrel_roll", st.Gesture)
	}

	// 1s cooldown: presses at 0 and 1000 only, each released on the next frame.
	assert.Equal(t, 2, rec.Count(inject.OpPress, "z"))
	assert.Equal(t, 2, rec.Count(inject.OpRelease, "z"))
}

func TestProcessor_MouseCursorFollowsHand(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(ArcadeMouse(cfg.ArcadeMouse), rec)

	base := detector.PointingLandmarks()
	var st State
	for i := 0; i < 4; i++ {
		st = p.Step(hands(base.Translated(0.05*float64(i), 0)), at(i*33))
	}

	require.NotNil(t, st.Cursor)
	assert.Greater(t, st.Cursor[0], 0.6)
	assert.InDelta(t, 0.5, st.Cursor[1], 1e-9)
	assert.Contains(t, st.Pressed, keys.Right)
	assert.NotContains(t, st.Pressed, keys.Left)

	// Losing the hand keeps the cursor where it was.
	st = p.Step(hands(), at(200))
	require.NotNil(t, st.Cursor)
	assert.Greater(t, st.Cursor[0], 0.6)
}

func TestProcessor_DashNeedsTwoOfThree(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Dash(cfg.Dash), rec)

	pinch := hands(detector.PinchLandmarks())

	st := p.Step(pinch, at(0))
	assert.Equal(t, "none", st.Gesture)
	assert.Zero(t, rec.Count(inject.OpPress, "space"))

	st = p.Step(pinch, at(33))
	assert.Equal(t, "jump", st.Gesture)
	assert.Equal(t, 1, rec.Count(inject.OpPress, "space"))
	assert.Greater(t, st.Pinch, 0.0)
	assert.Less(t, st.Pinch, cfg.Dash.PinchPx)
}

func TestProcessor_DashHoldsThroughEmptyFrame(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Dash(cfg.Dash), rec)

	pinch := hands(detector.PinchLandmarks())
	p.Step(pinch, at(0))
	p.Step(pinch, at(33))

	st := p.Step(hands(), at(66))
	assert.Equal(t, "jump", st.Gesture)
	assert.Equal(t, 1, rec.Count(inject.OpPress, "space"))
	assert.Zero(t, rec.Count(inject.OpRelease, "space"))
}

func TestProcessor_RunnerCalibratesAndJumps(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := inject.NewRecorder()
	p := NewProcessor(Runner(cfg.Runner), rec)

	// 300px of 480.
	joined := poses(detector.PoseFixture(0.5, 0.625, true))
	var st State
	for i := 0; i < 10; i++ {
		st = p.Step(joined, at(i*33))
	}

	assert.Equal(t, "active", st.Session)
	require.NotNil(t, st.MidY)
	assert.InDelta(t, 300, *st.MidY, 1e-9)

	clicks := 0
	for _, e := range rec.Events() {
		if e.Op == inject.OpClick {
			clicks++
			assert.Equal(t, 1300, e.X)
			assert.Equal(t, 800, e.Y)
		}
	}
	assert.Equal(t, 1, clicks)

	// 150px is above the jump line at 285.
	st = p.Step(poses(detector.PoseFixture(0.5, 0.3125, false)), at(400))
	assert.Equal(t, "jumping", st.Posture)
	assert.Equal(t, 1, rec.Count(inject.OpPress, "up"))
	assert.Equal(t, 1, rec.Count(inject.OpRelease, "up"))
	assert.Empty(t, rec.Held())
}

func TestProcessor_ActionCounts(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewProcessor(Arcade(cfg.Arcade), inject.NewRecorder())

	pointing := hands(detector.PointingLandmarks())
	p.Step(pointing, at(0))
	p.Step(hands(), at(50))
	p.Step(pointing, at(200))

	assert.Equal(t, 2, p.ActionCounts()["shoot"])
}

func TestByName(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, name := range []string{NameArcade, NameArcadeMouse, NameDash, NameRunner} {
		v, ok := ByName(name, cfg)
		require.True(t, ok, name)
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Bindings, name)
	}

	_, ok := ByName("pong", cfg)
	assert.False(t, ok)
}

func TestVariant_DetectorConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detector.Python = "/venv/bin/python"

	dc := Runner(cfg.Runner).DetectorConfig(cfg.Detector)
	assert.Equal(t, detector.ModePose, dc.Mode)
	assert.Equal(t, "/venv/bin/python", dc.Python)
	assert.Equal(t, 0.5, dc.MinConfidence)

	dc = Dash(cfg.Dash).DetectorConfig(cfg.Detector)
	assert.Equal(t, detector.ModeHands, dc.Mode)
	assert.Equal(t, 0.5, dc.Scale)
}

// scriptedDetector returns results in order, then fails or panics.
type scriptedDetector struct {
	*detector.MockDetector
	results []*detector.Detection
	err     error
	panics  bool
	calls   int
}

func (d *scriptedDetector) Detect(frame *gocv.Mat) (*detector.Detection, error) {
	d.calls++
	if d.calls <= len(d.results) {
		return d.results[d.calls-1], nil
	}
	if d.panics {
		panic("landmark service crashed")
	}
	return nil, d.err
}

// trackingCamera remembers every frame it hands out.
type trackingCamera struct {
	*capture.MockCamera
	handed []*gocv.Mat
}

func (c *trackingCamera) ReadFrame() (*gocv.Mat, error) {
	f, err := c.MockCamera.ReadFrame()
	if f != nil {
		c.handed = append(c.handed, f)
	}
	return f, err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCamera(t *testing.T, n int) *capture.MockCamera {
	t.Helper()
	frames := capture.BlankFrames(n, 64, 48)
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return capture.NewMockCamera(frames, false)
}

func TestRun_EndOfStream(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := newTestCamera(t, 3)
	det := detector.NewMockDetector()
	hub := server.NewHub()
	st := newTestStore(t)

	c := New(Config{Variant: Arcade(cfg.Arcade), Store: st, Publisher: hub}, cam, det, inject.NewRecorder())
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 3, c.Processor().Frames())
	assert.Equal(t, 3, det.Calls())
	assert.True(t, det.Closed())
	assert.False(t, cam.IsOpen())
	assert.NotNil(t, hub.State())

	sess, err := st.Sessions().GetByID(c.SessionID())
	require.NoError(t, err)
	assert.Equal(t, ReasonStreamEnd, sess.Reason)
	assert.Equal(t, 3, sess.Frames)
	assert.Equal(t, store.ModeTest, sess.Mode)
	assert.NotNil(t, sess.EndedAt)
}

func TestRun_DetectorErrorDrainsKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := newTestCamera(t, 5)
	errService := errors.New("service exited")
	det := &scriptedDetector{
		MockDetector: detector.NewMockDetector(),
		results:      []*detector.Detection{hands(detector.PointingLandmarks())},
		err:          errService,
	}
	rec := inject.NewRecorder()
	st := newTestStore(t)

	c := New(Config{Variant: Arcade(cfg.Arcade), Play: true, Store: st}, cam, det, rec)
	err := c.Run(context.Background())

	require.ErrorIs(t, err, errService)
	assert.Equal(t, 1, rec.Count(inject.OpPress, "x"))
	assert.Empty(t, rec.Held())
	assert.True(t, det.Closed())
	assert.False(t, cam.IsOpen())

	sess, err := st.Sessions().GetByID(c.SessionID())
	require.NoError(t, err)
	assert.Equal(t, ReasonDetector, sess.Reason)
	assert.Equal(t, store.ModePlay, sess.Mode)

	counts, err := st.Sessions().ActionCounts(c.SessionID())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["shoot"])
}

func TestRun_PanicStillCleansUp(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := newTestCamera(t, 5)
	det := &scriptedDetector{
		MockDetector: detector.NewMockDetector(),
		results:      []*detector.Detection{hands(detector.PointingLandmarks())},
		panics:       true,
	}
	rec := inject.NewRecorder()

	c := New(Config{Variant: Arcade(cfg.Arcade)}, cam, det, rec)
	err := c.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Empty(t, rec.Held())
	assert.True(t, det.Closed())
	assert.False(t, cam.IsOpen())
}

func TestRun_PanicClosesFrame(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := &trackingCamera{MockCamera: newTestCamera(t, 5)}
	det := &scriptedDetector{
		MockDetector: detector.NewMockDetector(),
		results:      []*detector.Detection{hands()},
		panics:       true,
	}

	c := New(Config{Variant: Arcade(cfg.Arcade)}, cam, det, inject.NewRecorder())
	require.Error(t, c.Run(context.Background()))

	require.Len(t, cam.handed, 2)
	for i, f := range cam.handed {
		assert.Nil(t, f.Ptr(), "frame %d left open", i)
	}
}

func TestRun_CameraOpenFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := newTestCamera(t, 1)
	cam.FailOpen(errors.New("device busy"))
	det := detector.NewMockDetector()
	st := newTestStore(t)

	c := New(Config{Variant: Dash(cfg.Dash), CameraID: 2, Store: st}, cam, det, inject.NewRecorder())
	err := c.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera 2")
	assert.Zero(t, det.Calls())
	assert.Empty(t, c.SessionID())

	sessions, err := st.Sessions().List(0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := config.DefaultConfig()
	cam := newTestCamera(t, 1)
	det := detector.NewMockDetector()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{Variant: Runner(cfg.Runner)}, cam, det, inject.NewRecorder())
	require.NoError(t, c.Run(ctx))
	assert.Zero(t, c.Processor().Frames())
	assert.True(t, det.Closed())
	assert.False(t, cam.IsOpen())
}
