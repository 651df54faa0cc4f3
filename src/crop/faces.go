package crop

import (
	"fmt"
	"image"
	"log"

	pigo "github.com/esimov/pigo/core"
	"github.com/spf13/afero"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . FaceDetector

// FaceDetector finds the regions of an image which contain faces.
type FaceDetector interface {
	Detect(img image.Image) ([]image.Rectangle, error)
}

// NoFaces is a FaceDetector which never finds anything. It is used when face
// detection is not available.
type NoFaces struct{}

// Detect implements FaceDetector.
func (NoFaces) Detect(image.Image) ([]image.Rectangle, error) {
	return nil, nil
}

// PigoDetector finds faces with the pigo cascade classifier.
type PigoDetector struct {
	classifier *pigo.Pigo

	// MinQuality is the detection quality under which detections are
	// ignored.
	MinQuality float32
}

// NewPigoDetector returns a detector using the packed cascade in `cascade`.
// Malformed cascades result in an error.
func NewPigoDetector(cascade []byte) (*PigoDetector, error) {
	classifier, err := unpackCascade(cascade)
	if err != nil {
		return nil, err
	}

	return &PigoDetector{
		classifier: classifier,
		MinQuality: 5.0,
	}, nil
}

// unpackCascade wraps pigo's Unpack which indexes into the cascade without
// checking its length.
func unpackCascade(cascade []byte) (classifier *pigo.Pigo, err error) {
	defer func() {
		if r := recover(); r != nil {
			classifier = nil
			err = fmt.Errorf("malformed cascade: %v", r)
		}
	}()

	return pigo.NewPigo().Unpack(cascade)
}

// Detect implements FaceDetector.
func (d *PigoDetector) Detect(img image.Image) ([]image.Rectangle, error) {
	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()

	maxSize := cols
	if rows > maxSize {
		maxSize = rows
	}

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	return detectionsToFaces(dets, bounds, d.MinQuality), nil
}

// detectionsToFaces converts the detections, which are relative to the top left
// corner of `bounds`, into face rectangles inside `bounds`.
func detectionsToFaces(
	dets []pigo.Detection,
	bounds image.Rectangle,
	minQuality float32,
) []image.Rectangle {
	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}

		half := det.Scale / 2
		face := image.Rect(
			det.Col-half,
			det.Row-half,
			det.Col+half,
			det.Row+half,
		).Add(bounds.Min).Intersect(bounds)
		if face.Empty() {
			continue
		}
		faces = append(faces, face)
	}

	return faces
}

// NewFaceDetector returns a pigo detector when a cascade file is found at
// `cascadePath`. Otherwise it returns NoFaces.
func NewFaceDetector(fs afero.Fs, cascadePath string) FaceDetector {
	if cascadePath == "" {
		return NoFaces{}
	}

	cascade, err := afero.ReadFile(fs, cascadePath)
	if err != nil {
		log.Printf("Face detection disabled, reading cascade: %s\n", err)
		return NoFaces{}
	}

	detector, err := NewPigoDetector(cascade)
	if err != nil {
		log.Printf("Face detection disabled, unpacking cascade %s: %s\n",
			cascadePath, err)
		return NoFaces{}
	}

	return detector
}
