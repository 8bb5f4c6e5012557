package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/cvgames/internal/detector"
)

func TestArcadeRules_BarrelRollThreshold(t *testing.T) {
	r := NewRecognizer(ArcadeRules())

	for m := FingerMask(0); m < 1<<NumFingers; m++ {
		d := WithMask(m)
		got := r.Recognize(&d) == BarrelRoll
		want := m.Count() >= 4
		assert.Equal(t, want, got, "mask %s (%d extended)", m, m.Count())
	}
}

func TestArcadeRules_Patterns(t *testing.T) {
	r := NewRecognizer(ArcadeRules())

	tests := []struct {
		mask FingerMask
		want Gesture
	}{
		{MaskOf(Index), Shoot},
		{MaskOf(Thumb, Index), Select},
		{MaskOf(Thumb, Pinky), Start},
		{MaskOf(Index, Middle, Ring, Pinky), BarrelRoll},
		{MaskOf(Thumb, Index, Middle, Ring, Pinky), BarrelRoll},
		{MaskOf(Index, Middle, Ring), None},
		{MaskOf(Index, Middle), None},
		{MaskOf(Thumb), None},
		{0, None},
	}

	for _, tt := range tests {
		t.Run(tt.mask.String(), func(t *testing.T) {
			d := WithMask(tt.mask)
			assert.Equal(t, tt.want, r.Recognize(&d))
		})
	}
}

func TestArcadeRules_Disjoint(t *testing.T) {
	rules := ArcadeRules()

	for m := FingerMask(0); m < 1<<NumFingers; m++ {
		d := WithMask(m)
		matched := 0
		for _, rule := range rules {
			if rule.Match(&d) {
				matched++
			}
		}
		assert.LessOrEqual(t, matched, 1, "mask %s matched %d rules", m, matched)
	}
}

func TestRecognize_ShootFromLandmarks(t *testing.T) {
	hand := detector.PointingLandmarks()
	d := arcadeClassifier().DescribeHand(&hand, 640, 480)

	assert.Equal(t, Shoot, NewRecognizer(ArcadeRules()).Recognize(&d))
}

func TestRecognize_Nil(t *testing.T) {
	assert.Equal(t, None, NewRecognizer(ArcadeRules()).Recognize(nil))
}

func TestDashRules(t *testing.T) {
	r := NewRecognizer(DashRules(30))
	c := dashClassifier()

	pinch := detector.PinchLandmarks()
	d := c.DescribeHand(&pinch, 640, 480)
	assert.Equal(t, Jump, r.Recognize(&d))

	open := detector.OpenPalmLandmarks()
	d = c.DescribeHand(&open, 640, 480)
	assert.Equal(t, None, r.Recognize(&d), "open palm is not a jump")

	edge := HandDescription{PinchDistance: 30}
	assert.Equal(t, None, r.Recognize(&edge), "threshold is strict")
}

func TestMajorityFilter(t *testing.T) {
	f := NewMajorityFilter(3, 2)

	assert.Equal(t, None, f.Push(Jump), "one frame is not a majority")
	assert.Equal(t, Jump, f.Push(Jump))
	assert.Equal(t, Jump, f.Push(None), "window holds jump, jump, none")
	assert.Equal(t, Jump, f.Push(Jump), "window holds jump, none, jump")
	assert.Equal(t, None, f.Push(None), "window holds none, jump, none")
	assert.Equal(t, None, f.Push(None))
	assert.Equal(t, None, f.Push(Jump), "window holds none, none, jump")

	f.Reset()
	assert.Equal(t, None, f.Push(Jump))
}

func TestMajorityFilter_HoldsThroughEmptyFrame(t *testing.T) {
	f := NewMajorityFilter(3, 2)

	got := []Gesture{f.Push(Jump), f.Push(Jump), f.Push(None)}
	assert.Equal(t, []Gesture{None, Jump, Jump}, got)
}

func TestMajorityFilter_MostRecentWins(t *testing.T) {
	f := NewMajorityFilter(4, 2)

	f.Push(Shoot)
	f.Push(Shoot)
	f.Push(Jump)
	assert.Equal(t, Jump, f.Push(Jump), "both qualify, jump is newer")
	assert.Equal(t, Jump, f.Push(None), "window holds shoot, jump, jump, none")
}

func TestMajorityFilter_Bounds(t *testing.T) {
	f := NewMajorityFilter(0, 5)
	assert.Equal(t, Jump, f.Push(Jump))
}

func TestGestureString(t *testing.T) {
	assert.Equal(t, "barrel_roll", BarrelRoll.String())
	assert.Equal(t, "unknown", Gesture(99).String())
	assert.Equal(t, "thumb+pinky", MaskOf(Thumb, Pinky).String())
}
