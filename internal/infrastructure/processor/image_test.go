package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return buf.Bytes()
}

func TestFillImageCropsToExactSize(t *testing.T) {
	out, err := FillImage(samplePNG(t, 200, 50), 64, 64, nil, FormatJPEG)
	if err != nil {
		t.Fatalf("FillImage: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("size = %dx%d, want 64x64", b.Dx(), b.Dy())
	}
}

func TestFillImageDrawsOverlay(t *testing.T) {
	src := samplePNG(t, 320, 180)
	plain, err := FillImage(src, 320, 180, nil, FormatPNG)
	if err != nil {
		t.Fatalf("FillImage plain: %v", err)
	}
	overlay := &TextOverlay{Text: "Hello", Size: 26, Color: color.White, Gravity: GravitySouth, OffsetY: 10}
	withText, err := FillImage(src, 320, 180, overlay, FormatPNG)
	if err != nil {
		t.Fatalf("FillImage overlay: %v", err)
	}
	if bytes.Equal(plain, withText) {
		t.Error("overlay did not change the image")
	}
}

func TestFillImageRejectsGarbage(t *testing.T) {
	if _, err := FillImage([]byte("not an image"), 10, 10, nil, FormatJPEG); err == nil {
		t.Error("expected decode error")
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]float64{
		"12.480000\n": 12.48,
		"N/A":         0,
		"":            0,
	}
	for in, want := range cases {
		got, err := parseDuration(in)
		if err != nil {
			t.Fatalf("parseDuration(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseDuration(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseDuration("abc"); err == nil {
		t.Error("expected error for non-numeric duration")
	}
}
