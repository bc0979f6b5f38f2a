package yunet

import (
	"image"

	"github.com/teslashibe/go-visioncursor/pkg/gaze"
	"github.com/teslashibe/go-visioncursor/pkg/tracking/detection"
	"gocv.io/x/gocv"
)

var _ gaze.Landmarker = (*EyeLandmarker)(nil)

// EyeLandmarker locates the iris of each eye inside a YuNet face.
//
// For each eye keypoint it crops a box sized from the interocular distance,
// blurs the grayscale crop and takes the darkest pixel as the iris. The box
// edges become the eye corners and lids, so the iris offset inside the box is
// the gaze direction.
type EyeLandmarker struct {
	face   *Detector
	config detection.Config
}

// NewEyeLandmarker loads the face model and returns a landmarker.
func NewEyeLandmarker(cfg detection.Config) (*EyeLandmarker, error) {
	face, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &EyeLandmarker{face: face, config: cfg}, nil
}

// ProcessFrame implements gaze.Landmarker. Returns nil when no face is found.
func (l *EyeLandmarker) ProcessFrame(jpeg []byte) (*gaze.Landmarks, error) {
	img, err := decode(jpeg)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	best := detection.SelectBest(l.face.detectMat(img))
	if best == nil {
		return nil, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	w, h := img.Cols(), img.Rows()
	box := detection.EyeBoxes(*best, w, h, l.config.EyeWidthRatio, l.config.EyeHeightRatio)

	return &gaze.Landmarks{
		Confidence: best.Confidence,
		Box:        gaze.Rect{X: best.X, Y: best.Y, W: best.W, H: best.H},
		LeftEye:    detection.EyeFromBox(box[0], darkestPoint(gray, box[0]), w, h),
		RightEye:   detection.EyeFromBox(box[1], darkestPoint(gray, box[1]), w, h),
	}, nil
}

// Close releases the face model.
func (l *EyeLandmarker) Close() error {
	return l.face.Close()
}

// darkestPoint returns the darkest pixel of the blurred region, in image
// coordinates. An empty region yields its center.
func darkestPoint(gray gocv.Mat, box image.Rectangle) image.Point {
	if box.Dx() < 3 || box.Dy() < 3 {
		return image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
	}

	roi := gray.Region(box)
	defer roi.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(roi, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	_, _, minLoc, _ := gocv.MinMaxLoc(blurred)
	return box.Min.Add(minLoc)
}
