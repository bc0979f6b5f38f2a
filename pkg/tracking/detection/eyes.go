package detection

import (
	"image"
	"math"

	"github.com/teslashibe/go-visioncursor/pkg/gaze"
)

// EyeBoxes returns pixel boxes around both eyes, clipped to the image.
func EyeBoxes(d Detection, w, h int, widthRatio, heightRatio float64) [2]image.Rectangle {
	fw, fh := float64(w), float64(h)
	dist := d.EyeDistance(w, h)

	halfW := int(math.Round(dist * widthRatio / 2))
	halfH := int(math.Round(dist * heightRatio / 2))
	halfW = max(halfW, 2)
	halfH = max(halfH, 2)

	bounds := image.Rect(0, 0, w, h)
	var out [2]image.Rectangle
	for i, k := range []Keypoint{d.LeftEye, d.RightEye} {
		cx := int(math.Round(k.X * fw))
		cy := int(math.Round(k.Y * fh))
		out[i] = image.Rect(cx-halfW, cy-halfH, cx+halfW, cy+halfH).Intersect(bounds)
	}
	return out
}

// EyeFromBox converts a pixel eye box and iris to normalized landmarks.
func EyeFromBox(box image.Rectangle, iris image.Point, w, h int) gaze.Eye {
	fw, fh := float64(w), float64(h)
	midY := float64(box.Min.Y+box.Max.Y) / 2 / fh
	midX := float64(box.Min.X+box.Max.X) / 2 / fw

	return gaze.Eye{
		LeftCorner:  gaze.Point{X: float64(box.Min.X) / fw, Y: midY},
		RightCorner: gaze.Point{X: float64(box.Max.X) / fw, Y: midY},
		Top:         gaze.Point{X: midX, Y: float64(box.Min.Y) / fh},
		Bottom:      gaze.Point{X: midX, Y: float64(box.Max.Y) / fh},
		Iris:        gaze.Point{X: float64(iris.X) / fw, Y: float64(iris.Y) / fh},
	}
}
