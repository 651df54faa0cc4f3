// Package crop cuts images to a target aspect ratio around their most
// interesting part. Faces, when they could be detected, win over everything
// else.
package crop

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"

	// Decoders for the formats the scaler knows about.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/muesli/smartcrop"
	"github.com/muesli/smartcrop/nfnt"
)

// Resizer cuts a rectangle out of an encoded image and scales it.
type Resizer interface {
	CropScale(
		ctx context.Context,
		img io.Reader,
		crop image.Rectangle,
		toWidth, toHeight int,
	) ([]byte, error)
}

// SmartCropper crops images using saliency detection boosted by face detection.
type SmartCropper struct {
	faces    FaceDetector
	analyzer smartcrop.Analyzer
	resizer  Resizer
}

// NewSmartCropper returns a cropper which uses `faces` for finding faces and
// `resizer` for producing the final image.
func NewSmartCropper(faces FaceDetector, resizer Resizer) *SmartCropper {
	return &SmartCropper{
		faces:    faces,
		analyzer: smartcrop.NewAnalyzer(nfnt.NewDefaultResizer()),
		resizer:  resizer,
	}
}

// Crop returns `data` cropped around its salient region and resized to exactly
// width x height. When height is not positive it is the same as width. Cropping
// never fails: on error the original `data` is returned.
func (c *SmartCropper) Crop(ctx context.Context, data []byte, width, height int) []byte {
	if height <= 0 {
		height = width
	}

	cropped, err := c.crop(ctx, data, width, height)
	if err != nil {
		log.Printf("Warning: unable to smartcrop image, using it as it is: %s\n", err)
		return data
	}

	return cropped
}

func (c *SmartCropper) crop(
	ctx context.Context,
	data []byte,
	width, height int,
) ([]byte, error) {
	rect, err := c.Region(data, width, height)
	if err != nil {
		return nil, err
	}

	return c.resizer.CropScale(ctx, bytes.NewReader(data), rect, width, height)
}

// Region returns the rectangle of the image in `data` which will be used for
// a width x height crop.
func (c *SmartCropper) Region(data []byte, width, height int) (image.Rectangle, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("decoding image: %w", err)
	}

	faces, err := c.faces.Detect(img)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("detecting faces: %w", err)
	}

	rect, err := c.analyzer.FindBestCrop(img, width, height)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("finding best crop: %w", err)
	}

	if len(faces) > 0 {
		rect = centerOn(rect, union(faces), img.Bounds())
	}

	return rect, nil
}

// centerOn moves `crop` so that its center is as close to the center of `target`
// as possible without leaving `bounds`.
func centerOn(crop, target, bounds image.Rectangle) image.Rectangle {
	w, h := crop.Dx(), crop.Dy()
	cx := (target.Min.X + target.Max.X) / 2
	cy := (target.Min.Y + target.Max.Y) / 2

	r := image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)

	if r.Max.X > bounds.Max.X {
		r = r.Sub(image.Pt(r.Max.X-bounds.Max.X, 0))
	}
	if r.Min.X < bounds.Min.X {
		r = r.Add(image.Pt(bounds.Min.X-r.Min.X, 0))
	}
	if r.Max.Y > bounds.Max.Y {
		r = r.Sub(image.Pt(0, r.Max.Y-bounds.Max.Y))
	}
	if r.Min.Y < bounds.Min.Y {
		r = r.Add(image.Pt(0, bounds.Min.Y-r.Min.Y))
	}

	return r.Intersect(bounds)
}

func union(rects []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for _, r := range rects {
		u = u.Union(r)
	}
	return u
}
