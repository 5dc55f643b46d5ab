package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"phototagger/internal/services"
	"phototagger/internal/testsupport"
)

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	return img
}

func TestLoadKeepsSmallImageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	testsupport.WriteImage(t, path, 40, 30)

	data, err := Load(path, Options{MaxEdge: 768, Quality: 80})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := decodeJPEG(t, data).Bounds()
	if b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("expected 40x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadDownscalesToMaxEdge(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "landscape", w: 400, h: 200, wantW: 100, wantH: 50},
		{name: "portrait", w: 150, h: 300, wantW: 50, wantH: 100},
		{name: "square", w: 256, h: 256, wantW: 100, wantH: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name+".jpg")
			testsupport.WriteImage(t, path, tt.w, tt.h)

			data, err := Load(path, Options{MaxEdge: 100})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			b := decodeJPEG(t, data).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestLoadUnreadable(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, path := range []string{garbage, filepath.Join(dir, "missing.jpg")} {
		if _, err := Load(path, Options{}); !errors.Is(err, services.ErrImageUnreadable) {
			t.Fatalf("Load(%s): expected ErrImageUnreadable, got %v", filepath.Base(path), err)
		}
	}
}

func TestOrientationDefaultsToUpright(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testsupport.Gradient(8, 8), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := Orientation(buf.Bytes()); got != 1 {
		t.Fatalf("expected orientation 1, got %d", got)
	}
	if got := Orientation([]byte("junk")); got != 1 {
		t.Fatalf("expected orientation 1 for junk, got %d", got)
	}
}

func TestOrientTransforms(t *testing.T) {
	// 3x2 source with a marked top-left pixel.
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	mark := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, mark)

	tests := []struct {
		orientation int
		w, h        int
		markX       int
		markY       int
	}{
		{orientation: 1, w: 3, h: 2, markX: 0, markY: 0},
		{orientation: 2, w: 3, h: 2, markX: 2, markY: 0},
		{orientation: 3, w: 3, h: 2, markX: 2, markY: 1},
		{orientation: 4, w: 3, h: 2, markX: 0, markY: 1},
		{orientation: 5, w: 2, h: 3, markX: 0, markY: 0},
		{orientation: 6, w: 2, h: 3, markX: 1, markY: 0},
		{orientation: 7, w: 2, h: 3, markX: 1, markY: 2},
		{orientation: 8, w: 2, h: 3, markX: 0, markY: 2},
	}
	for _, tt := range tests {
		got := orient(src, tt.orientation)
		b := got.Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Fatalf("orientation %d: expected %dx%d, got %dx%d", tt.orientation, tt.w, tt.h, b.Dx(), b.Dy())
		}
		if got.RGBAAt(tt.markX, tt.markY) != mark {
			t.Fatalf("orientation %d: mark not at (%d,%d)", tt.orientation, tt.markX, tt.markY)
		}
	}
}

func TestTagInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{in: uint16(6), want: 6, ok: true},
		{in: uint32(3), want: 3, ok: true},
		{in: 8, want: 8, ok: true},
		{in: []uint16{5}, want: 5, ok: true},
		{in: "2", want: 2, ok: true},
		{in: 1.5, ok: false},
	}
	for _, tt := range tests {
		got, ok := tagInt(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("tagInt(%v) = %d, %v", tt.in, got, ok)
		}
	}
}
