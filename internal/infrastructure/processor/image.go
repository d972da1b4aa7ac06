package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type Gravity string

const (
	GravitySouth  Gravity = "south"
	GravityNorth  Gravity = "north"
	GravityCenter Gravity = "center"
)

type TextOverlay struct {
	Text    string
	Size    int // nominal font size in pixels
	Color   color.Color
	Gravity Gravity
	OffsetY int
}

type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// FillImage crops src to exactly width x height around its center and draws
// the optional overlay on top.
func FillImage(src []byte, width, height int, overlay *TextOverlay, format Format) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	if overlay != nil && overlay.Text != "" {
		dst = drawOverlay(dst, overlay)
	}
	return Encode(dst, format)
}

// Encode writes img in the requested format.
func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90))
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOverlay(dst *image.NRGBA, o *TextOverlay) *image.NRGBA {
	bounds := dst.Bounds()
	text := renderText(o.Text, o.Color)

	face := basicfont.Face7x13
	scale := o.Size / face.Height
	if scale < 1 {
		scale = 1
	}
	tw, th := text.Bounds().Dx()*scale, text.Bounds().Dy()*scale
	// Keep a margin on both sides when the text is wider than the image.
	if maxW := bounds.Dx() - 40; tw > maxW && maxW > 0 {
		th = th * maxW / tw
		tw = maxW
	}
	if tw <= 0 || th <= 0 {
		return dst
	}
	scaled := imaging.Resize(text, tw, th, imaging.NearestNeighbor)

	x := (bounds.Dx() - tw) / 2
	var y int
	switch o.Gravity {
	case GravityNorth:
		y = o.OffsetY
	case GravityCenter:
		y = (bounds.Dy()-th)/2 + o.OffsetY
	default:
		y = bounds.Dy() - th - o.OffsetY
	}
	return imaging.Overlay(dst, scaled, image.Pt(x, y), 1.0)
}

func renderText(text string, col color.Color) *image.NRGBA {
	if col == nil {
		col = color.White
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Height

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	d.Dst = img
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)
	return img
}

// Convert re-encodes src in the requested format.
func Convert(src []byte, format Format) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return Encode(img, format)
}
