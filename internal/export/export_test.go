package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	img.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func TestEncodeDecodePNG(t *testing.T) {
	url, err := Encode(sample(), FormatPNG)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", url)
	}
	img, err := Decode(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, a := img.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Fatalf("unexpected pixel %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestEncodeJPEG(t *testing.T) {
	url, err := Encode(sample(), FormatJPEG)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %.40s", url)
	}
	if _, err := Decode(url); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestDecodeRejectsOtherStrings(t *testing.T) {
	for _, s := range []string{"", "hello", "data:text/plain;base64,aGk=", "data:image/png,raw"} {
		if _, err := Decode(s); !errors.Is(err, ErrNotDataURL) {
			t.Errorf("Decode(%q) = %v, want ErrNotDataURL", s, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JPG"); err != nil || f != FormatJPEG {
		t.Fatalf("got %v %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("expected error")
	}
}

type sink struct {
	mu  sync.Mutex
	got []Image
	ch  chan Image
}

func newSink() *sink { return &sink{ch: make(chan Image, 8)} }

func (s *sink) deliver(img Image) {
	s.mu.Lock()
	s.got = append(s.got, img)
	s.mu.Unlock()
	s.ch <- img
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestNotifierDebouncesBurst(t *testing.T) {
	s := newSink()
	snaps := 0
	n := NewNotifier(20*time.Millisecond, func() image.Image { snaps++; return sample() }, s.deliver)
	t.Cleanup(n.Close)
	for i := 0; i < 5; i++ {
		n.Changed()
	}
	select {
	case img := <-s.ch:
		if img.Cleared || !strings.HasPrefix(img.DataURL, "data:image/png") {
			t.Fatalf("unexpected payload %+v", img)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("export never delivered")
	}
	time.Sleep(60 * time.Millisecond)
	if s.count() != 1 || snaps != 1 {
		t.Fatalf("expected a single export, got %d deliveries and %d snapshots", s.count(), snaps)
	}
}

func TestNotifierClearedIsImmediateAndDistinct(t *testing.T) {
	s := newSink()
	n := NewNotifier(time.Hour, func() image.Image { return sample() }, s.deliver)
	t.Cleanup(n.Close)
	n.Changed()
	n.Cleared()
	if n.Pending() {
		t.Fatal("clear should cancel the pending export")
	}
	if s.count() != 1 {
		t.Fatalf("expected the empty signal, got %d deliveries", s.count())
	}
	got := <-s.ch
	if !got.Cleared || got.DataURL != "" || got != Empty {
		t.Fatalf("expected empty signal, got %+v", got)
	}
}

func (s *sink) all() []Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Image(nil), s.got...)
}

func TestNotifierDropsExportOverlappingClear(t *testing.T) {
	s := newSink()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	n := NewNotifier(time.Nanosecond, func() image.Image {
		once.Do(func() { close(started) })
		<-release
		return sample()
	}, s.deliver)
	t.Cleanup(n.Close)

	n.Changed()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("export never started")
	}
	n.Cleared()
	close(release)
	time.Sleep(50 * time.Millisecond)

	got := s.all()
	if len(got) != 1 || got[0] != Empty {
		t.Fatalf("expected only the empty signal, got %d deliveries", len(got))
	}
}

func TestNotifierChangeAfterClearIsDelivered(t *testing.T) {
	s := newSink()
	n := NewNotifier(time.Hour, func() image.Image { return sample() }, s.deliver)
	t.Cleanup(n.Close)
	n.Changed()
	n.Cleared()
	n.Changed()
	if !n.Flush() {
		t.Fatal("expected the new change to be pending")
	}
	got := s.all()
	if len(got) != 2 || got[0] != Empty || got[1].Cleared {
		t.Fatalf("expected empty then raster, got %+v", got)
	}
}

func TestNotifierCallbackMayClear(t *testing.T) {
	var got []Image
	var n *Notifier
	n = NewNotifier(time.Hour, func() image.Image { return sample() }, func(img Image) {
		got = append(got, img)
		if !img.Cleared {
			n.Cleared()
		}
	})
	t.Cleanup(n.Close)
	n.Changed()
	n.Flush()
	if len(got) != 2 || got[0].Cleared || got[1] != Empty {
		t.Fatalf("expected raster then empty signal, got %+v", got)
	}
}

func TestNotifierFlushAndFormat(t *testing.T) {
	s := newSink()
	n := NewNotifier(time.Hour, func() image.Image { return sample() }, s.deliver)
	t.Cleanup(n.Close)
	n.SetFormat(FormatJPEG)
	if n.Flush() {
		t.Fatal("nothing should be pending")
	}
	n.Changed()
	if !n.Flush() {
		t.Fatal("expected flush to export")
	}
	got := <-s.ch
	if !strings.HasPrefix(got.DataURL, "data:image/jpeg") {
		t.Fatalf("expected jpeg export, got %.30s", got.DataURL)
	}
}

func TestNotifierSkipsWithoutSurface(t *testing.T) {
	s := newSink()
	n := NewNotifier(time.Hour, func() image.Image { return nil }, s.deliver)
	t.Cleanup(n.Close)
	n.Changed()
	n.Flush()
	if s.count() != 0 {
		t.Fatal("nothing should be delivered without a surface")
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sample(), SheetOptions{Title: "Practice"}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %.10q", buf.Bytes())
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "c.pdf"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, sample(), SheetOptions{}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("expected %s to be written: %v", name, err)
		}
	}
	if err := SaveFile(filepath.Join(dir, "d.gif"), sample(), SheetOptions{}); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if err := SaveFile(filepath.Join(dir, "e.png"), nil, SheetOptions{}); err == nil {
		t.Fatal("expected error for missing image")
	}
}
