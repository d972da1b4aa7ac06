package processor

import (
	"errors"
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidTransformation = errors.New("invalid transformation")

// Transformation is the parsed form of the URL segments between /upload/ and
// the public id, for example "so_10" or
// "c_fill,g_auto,w_1280,h_720/l_text:Arial_60_bold:Hello,co_white,g_south,y_40".
type Transformation struct {
	FrameOffset *float64
	Width       int
	Height      int
	Overlay     *TextOverlay
}

func (t *Transformation) Empty() bool {
	return t.FrameOffset == nil && t.Width == 0 && t.Height == 0 && t.Overlay == nil
}

func ParseTransformation(segments []string) (*Transformation, error) {
	t := &Transformation{}
	for _, segment := range segments {
		var overlay *TextOverlay
		for _, param := range strings.Split(segment, ",") {
			if err := t.apply(param, &overlay); err != nil {
				return nil, err
			}
		}
		if overlay != nil {
			t.Overlay = overlay
		}
	}
	if (t.Width == 0) != (t.Height == 0) {
		return nil, fmt.Errorf("%w: both w_ and h_ are required", ErrInvalidTransformation)
	}
	if t.Overlay != nil && t.Width == 0 {
		return nil, fmt.Errorf("%w: text overlay requires a fill crop", ErrInvalidTransformation)
	}
	return t, nil
}

// apply folds one parameter into t. Parameters that style a text layer
// attach to the layer opened earlier in the same segment.
func (t *Transformation) apply(param string, overlay **TextOverlay) error {
	switch {
	case strings.HasPrefix(param, "so_"):
		v, err := strconv.ParseFloat(strings.TrimPrefix(param, "so_"), 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTransformation, param)
		}
		t.FrameOffset = &v
	case strings.HasPrefix(param, "c_"):
		if param != "c_fill" {
			return fmt.Errorf("%w: unsupported crop %q", ErrInvalidTransformation, param)
		}
	case strings.HasPrefix(param, "w_"):
		v, err := positiveInt(strings.TrimPrefix(param, "w_"))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTransformation, param)
		}
		t.Width = v
	case strings.HasPrefix(param, "h_"):
		v, err := positiveInt(strings.TrimPrefix(param, "h_"))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTransformation, param)
		}
		t.Height = v
	case strings.HasPrefix(param, "l_text:"):
		o, err := parseTextLayer(strings.TrimPrefix(param, "l_text:"))
		if err != nil {
			return err
		}
		*overlay = o
	case strings.HasPrefix(param, "g_"):
		g := strings.TrimPrefix(param, "g_")
		if *overlay == nil {
			// Gravity of the crop itself; only center cropping is rendered.
			if g != "auto" && g != "center" {
				return fmt.Errorf("%w: unsupported crop gravity %q", ErrInvalidTransformation, param)
			}
			return nil
		}
		switch Gravity(g) {
		case GravitySouth, GravityNorth, GravityCenter:
			(*overlay).Gravity = Gravity(g)
		default:
			return fmt.Errorf("%w: unsupported gravity %q", ErrInvalidTransformation, param)
		}
	case strings.HasPrefix(param, "co_"):
		if *overlay == nil {
			return fmt.Errorf("%w: %q outside a text layer", ErrInvalidTransformation, param)
		}
		c, err := parseColor(strings.TrimPrefix(param, "co_"))
		if err != nil {
			return err
		}
		(*overlay).Color = c
	case strings.HasPrefix(param, "y_"):
		if *overlay == nil {
			return fmt.Errorf("%w: %q outside a text layer", ErrInvalidTransformation, param)
		}
		v, err := strconv.Atoi(strings.TrimPrefix(param, "y_"))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTransformation, param)
		}
		(*overlay).OffsetY = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidTransformation, param)
	}
	return nil
}

// parseTextLayer reads "<font family>_<size>[_<style>]:<escaped text>".
func parseTextLayer(layer string) (*TextOverlay, error) {
	fontSpec, escaped, ok := strings.Cut(layer, ":")
	if !ok {
		return nil, fmt.Errorf("%w: text layer without text", ErrInvalidTransformation)
	}
	text, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransformation, err)
	}

	size := 13
	if parts := strings.Split(fontSpec, "_"); len(parts) >= 2 {
		if v, err := positiveInt(parts[1]); err == nil {
			size = v
		}
	}
	return &TextOverlay{
		Text:    text,
		Size:    size,
		Color:   color.White,
		Gravity: GravitySouth,
	}, nil
}

var namedColors = map[string]color.Color{
	"white":  color.White,
	"black":  color.Black,
	"red":    color.RGBA{R: 0xff, A: 0xff},
	"yellow": color.RGBA{R: 0xff, G: 0xff, A: 0xff},
}

func parseColor(raw string) (color.Color, error) {
	if c, ok := namedColors[strings.ToLower(raw)]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(raw, "rgb:"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported color %q", ErrInvalidTransformation, raw)
}

func positiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > 8192 {
		return 0, fmt.Errorf("out of range: %d", v)
	}
	return v, nil
}
