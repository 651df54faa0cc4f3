package scaler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"runtime"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Additional image formats from the x repository.
	_ "golang.org/x/image/vp8"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// ErrCancelled is returned when one is trying to interact with an stopped
// scaler.
var ErrCancelled = fmt.Errorf("scale operation on cancelled Scaler")

// description is a scaling instruction.
type description struct {

	// ToWidth tells instructs the scaling to produce an image
	// with this width.
	ToWidth int

	// ToHeight is the height of the produced image. When zero the
	// height is chosen so that the aspect ratio is preserved.
	ToHeight int

	// Crop is the part of the source image which will be scaled. The
	// whole image is used when it is empty.
	Crop image.Rectangle

	// ImgR is the source of the image which will be scaled.
	ImgR io.Reader

	// Result is the channel on which the result image is
	// returned.
	Result chan Result
}

// Result is a type which encapsulates a result from an image
// conversion.
type Result struct {
	ImgData []byte
	Err     error
}

// Scaler is a utility type which could be used for scaling
// images. It runs one worker per CPU.
type Scaler struct {
	cancelContext context.CancelFunc
	done          <-chan struct{}

	work chan description
}

// Scale converts the image (img) to have width toWidth in pixels while
// preserving its aspect ratio. The result is encoded in the format of
// the source image where possible and PNG otherwise.
func (s *Scaler) Scale(
	ctx context.Context,
	img io.Reader,
	toWidth int,
) ([]byte, error) {
	return s.do(ctx, description{
		ImgR:    img,
		ToWidth: toWidth,
	})
}

// CropScale cuts the `crop` rectangle out of img and scales it to exactly
// toWidth x toHeight pixels.
func (s *Scaler) CropScale(
	ctx context.Context,
	img io.Reader,
	crop image.Rectangle,
	toWidth, toHeight int,
) ([]byte, error) {
	if toHeight <= 0 {
		toHeight = toWidth
	}

	return s.do(ctx, description{
		ImgR:     img,
		ToWidth:  toWidth,
		ToHeight: toHeight,
		Crop:     crop,
	})
}

func (s *Scaler) do(ctx context.Context, desc description) ([]byte, error) {
	if s.stopped() {
		return nil, ErrCancelled
	}
	if desc.ToWidth <= 0 {
		return nil, fmt.Errorf("invalid target width %d", desc.ToWidth)
	}

	desc.Result = make(chan Result, 1)

	select {
	case s.work <- desc:
	case <-s.done:
		return nil, ErrCancelled
	case <-ctx.Done():
		return nil, fmt.Errorf("ctx done while waiting to send scale op: %w", ctx.Err())
	}

	select {
	case res := <-desc.Result:
		return res.ImgData, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("ctx done while waiting for scale op: %w", ctx.Err())
	}
}

func (s *Scaler) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Scaler) worker(ctx context.Context) func() error {
	return func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case desc := <-s.work:
				imgData, err := s.scaleImage(desc)
				desc.Result <- Result{
					ImgData: imgData,
					Err:     err,
				}
			}
		}
	}
}

func (s *Scaler) scaleImage(desc description) ([]byte, error) {
	img, format, err := image.Decode(desc.ImgR)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	srcRect := img.Bounds()
	if !desc.Crop.Empty() {
		srcRect = desc.Crop.Intersect(img.Bounds())
		if srcRect.Empty() {
			return nil, fmt.Errorf("crop %v is outside of image bounds %v",
				desc.Crop, img.Bounds())
		}
	}

	toWidth := desc.ToWidth
	toHeight := desc.ToHeight
	if toHeight <= 0 {
		toHeight = toWidth
		imgw := srcRect.Dx()
		imgh := srcRect.Dy()
		if imgw != imgh {
			toHeight = int((float32(imgh) / float32(imgw)) * float32(toWidth))
		}
		if toHeight < 1 {
			toHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, toWidth, toHeight))

	draw.CatmullRom.Scale(
		dst,
		dst.Bounds(),
		img,
		srcRect,
		draw.Over,
		nil,
	)

	var out bytes.Buffer
	if err := encode(&out, dst, format); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return out.Bytes(), nil
}

// encode writes img into w using the image format with this name. Formats
// without an encoder are written as PNG.
func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}

// MIMEType returns the MIME type of the encoded image in data.
func MIMEType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("detecting image format: %w", err)
	}

	return "image/" + format, nil
}

// Cancel stops the scaler and of its operations. Users may not use
// any further methods on cancelled scalers.
func (s *Scaler) Cancel() {
	s.cancelContext()
}

// New returns a new scaler, ready for use.
func New(ctx context.Context) *Scaler {
	ctx, cancel := context.WithCancel(ctx)

	s := &Scaler{
		cancelContext: cancel,
		done:          ctx.Done(),
		work:          make(chan description),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < runtime.NumCPU(); i++ {
		g.Go(s.worker(gctx))
	}

	return s
}
