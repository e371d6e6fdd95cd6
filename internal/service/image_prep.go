package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"image-text-reader/internal/domain"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxImageDimension bounds the longer side of an image sent to the model.
const MaxImageDimension = 1536

// MaxImagePixels caps the declared width*height accepted before a full decode.
const MaxImagePixels = 89_478_485

const jpegQuality = 90

// ErrImageTooLarge is returned for images whose header declares too many pixels.
var ErrImageTooLarge = errors.New("image exceeds pixel limit")

// PreparedImage is the payload handed to the model client.
type PreparedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}

// PrepareImage loads path, downscales it to fit maxDim and applies EXIF orientation.
// Formats the model does not take inline are re-encoded as PNG.
func PrepareImage(path string, maxDim int) (*PreparedImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("failed to decode image: %w (%dx%d)", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	orient := 1
	if format == "jpeg" {
		orient = orientation(raw)
	}

	nw, nh := fitWithin(cfg.Width, cfg.Height, maxDim)
	resized := nw != cfg.Width || nh != cfg.Height
	rotated := orient > 1 && orient <= 8

	if mime, ok := inlineMIME[format]; ok && !resized && !rotated {
		return &PreparedImage{Data: raw, MIMEType: mime, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if resized {
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}
	if rotated {
		img = applyOrientation(img, orient)
	}

	var buf bytes.Buffer
	mime := "image/png"
	if format == "jpeg" {
		mime = "image/jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &PreparedImage{
		Data:     buf.Bytes(),
		MIMEType: mime,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Resized:  resized,
	}, nil
}

// fitWithin scales (w, h) so the larger side equals maxDim, keeping the ratio.
func fitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(maxDim)/float64(w) + 0.5)
		return maxDim, max(nh, 1)
	}
	nw := int(float64(w)*float64(maxDim)/float64(h) + 0.5)
	return max(nw, 1), maxDim
}

// inlineMIME lists the decoded formats the model accepts as-is.
var inlineMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// orientation returns the EXIF orientation tag, 1 when absent.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// applyOrientation maps EXIF orientations 2 through 8 onto an upright RGBA copy.
func applyOrientation(img image.Image, o int) image.Image {
	src, ok := img.(*image.RGBA)
	if !ok {
		src = image.NewRGBA(img.Bounds())
		draw.Draw(src, src.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	if o >= 5 && o <= 8 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x, y
			switch o {
			case 2:
				dx = w - 1 - x
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dy = h - 1 - y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}
