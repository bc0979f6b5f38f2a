package detection

import (
	"image"
	"math"
	"testing"

	"github.com/teslashibe/go-visioncursor/pkg/gaze"
)

func TestEyeBoxes(t *testing.T) {
	d := Detection{
		LeftEye:  Keypoint{X: 0.4, Y: 0.5},
		RightEye: Keypoint{X: 0.6, Y: 0.5},
	}

	// 100px between eyes on a 500x400 image
	boxes := EyeBoxes(d, 500, 400, 0.5, 0.3)

	want := [2]image.Rectangle{
		image.Rect(175, 185, 225, 215),
		image.Rect(275, 185, 325, 215),
	}
	for i := range want {
		if boxes[i] != want[i] {
			t.Errorf("Box %d: got %v, want %v", i, boxes[i], want[i])
		}
	}
}

func TestEyeBoxes_ClippedToImage(t *testing.T) {
	d := Detection{
		LeftEye:  Keypoint{X: 0.0, Y: 0.0},
		RightEye: Keypoint{X: 0.2, Y: 0.0},
	}

	boxes := EyeBoxes(d, 500, 400, 0.5, 0.3)
	bounds := image.Rect(0, 0, 500, 400)
	for i, b := range boxes {
		if !b.In(bounds) {
			t.Errorf("Box %d %v outside image", i, b)
		}
	}
}

func TestEyeFromBox_CenteredIris(t *testing.T) {
	box := image.Rect(100, 50, 140, 70)
	eye := EyeFromBox(box, image.Pt(120, 60), 200, 100)

	est := gaze.NewEstimator(nil)
	v, ok := est.Estimate(&gaze.Landmarks{Confidence: 1, LeftEye: eye, RightEye: eye})
	if !ok {
		t.Fatal("Estimate failed")
	}
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Errorf("Expected centered gaze, got (%v, %v)", v.X, v.Y)
	}
}

func TestEyeFromBox_IrisRight(t *testing.T) {
	box := image.Rect(100, 50, 140, 70)
	eye := EyeFromBox(box, image.Pt(130, 60), 200, 100)

	est := gaze.NewEstimator(nil)
	v, ok := est.Estimate(&gaze.Landmarks{Confidence: 1, LeftEye: eye, RightEye: eye})
	if !ok {
		t.Fatal("Estimate failed")
	}
	if math.Abs(v.X-0.5) > 1e-9 {
		t.Errorf("Expected x 0.5, got %v", v.X)
	}
}
