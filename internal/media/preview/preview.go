package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/bep/imagemeta"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"phototagger/internal/services"
)

// MIMEType is the content type of every encoded preview.
const MIMEType = "image/jpeg"

const (
	defaultMaxEdge = 768
	defaultQuality = 90
)

// Options bounds the encoded preview.
type Options struct {
	MaxEdge int
	Quality int
}

func (o Options) withDefaults() Options {
	if o.MaxEdge <= 0 {
		o.MaxEdge = defaultMaxEdge
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = defaultQuality
	}
	return o
}

// Load reads the image at path and returns an oriented, downscaled JPEG.
// Any read or decode failure is reported as services.ErrImageUnreadable.
func Load(path string, opts Options) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrImageUnreadable, "preview", "read", path, err)
	}
	return Encode(data, opts)
}

// Encode converts raw image bytes into a preview JPEG.
func Encode(data []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrImageUnreadable, "preview", "decode", "", err)
	}
	if b := src.Bounds(); b.Empty() {
		return nil, services.Wrap(services.ErrImageUnreadable, "preview", "decode", format, errors.New("empty image"))
	}

	img := orient(downscale(src, opts.MaxEdge), Orientation(data))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, services.Wrap(services.ErrImageUnreadable, "preview", "encode", format, err)
	}
	return buf.Bytes(), nil
}

// Orientation returns the EXIF orientation (1-8) stored in data, or 1 when
// the image carries none.
func Orientation(data []byte) int {
	orientation := 1
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if v, ok := tagInt(ti.Value); ok && v >= 1 && v <= 8 {
				orientation = v
			}
			return nil
		},
	})
	if err != nil {
		return 1
	}
	return orientation
}

func tagInt(v any) (int, bool) {
	switch val := v.(type) {
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint8:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case []uint16:
		if len(val) > 0 {
			return int(val[0]), true
		}
	case []any:
		if len(val) > 0 {
			return tagInt(val[0])
		}
	case string:
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// downscale fits src inside a maxEdge square and flattens it onto white,
// since JPEG has no alpha channel.
func downscale(src image.Image, maxEdge int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	nw, nh := w, h
	if w > maxEdge || h > maxEdge {
		if w >= h {
			nw = maxEdge
			nh = max(1, h*maxEdge/w)
		} else {
			nh = maxEdge
			nw = max(1, w*maxEdge/h)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if nw == w && nh == h {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// orient applies an EXIF orientation so the result displays upright.
func orient(src *image.RGBA, orientation int) *image.RGBA {
	if orientation <= 1 || orientation > 8 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.SetRGBA(dx, dy, src.RGBAAt(x, y))
		}
	}
	return dst
}
