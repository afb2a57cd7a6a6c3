package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	p := NewProcessor(Config{MaxWidth: 100, MaxHeight: 100})

	out, err := p.Process(bytes.NewReader(pngBytes(t, 300, 150)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !out.Resized || out.Width != 100 || out.Height != 50 {
		t.Fatalf("unexpected result: resized=%v %dx%d", out.Resized, out.Width, out.Height)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("expected png kept, got %s", out.ContentType)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil || cfg.Width != 100 {
		t.Fatalf("re-encoded data is not a 100px png: %v %+v", err, cfg)
	}
}

func TestProcessKeepsSmallImage(t *testing.T) {
	in := pngBytes(t, 40, 30)
	out, err := NewProcessor(DefaultConfig()).Process(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Resized || !bytes.Equal(out.Data, in) {
		t.Fatal("expected small image returned untouched")
	}
}

func TestProcessJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	out, err := NewProcessor(Config{MaxWidth: 200, MaxHeight: 200, Quality: 70}).Process(&buf)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.ContentType != "image/jpeg" || out.Width != 200 {
		t.Fatalf("unexpected result %s %dx%d", out.ContentType, out.Width, out.Height)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := NewProcessor(DefaultConfig()).Process(strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestValidateTypeAndExtension(t *testing.T) {
	if !ValidateType("Beach.JPG") || ValidateType("notes.txt") {
		t.Fatal("unexpected type validation")
	}
	if ExtensionFor("image/png") != ".png" || ExtensionFor("image/jpeg") != ".jpg" {
		t.Fatal("unexpected extension mapping")
	}
}
