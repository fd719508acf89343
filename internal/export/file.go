package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/inkwell/internal/render"
)

// SheetOptions configures a PDF practice sheet.
type SheetOptions struct {
	Title  string
	Author string
}

// WritePDF lays img out on an A4 portrait page, scaled to fit inside the
// margins below an optional title.
func WritePDF(w io.Writer, img image.Image, opts SheetOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("inkwell", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	pdf.AddPage()

	left, top, right, bottom := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	y := top
	if opts.Title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, opts.Title, "", 1, "C", false, 0, "")
		y = pdf.GetY() + 4
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Flatten(img, color.White)); err != nil {
		return fmt.Errorf("encode sheet image: %w", err)
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("drawing", opt, &buf)

	b := img.Bounds()
	boxW := pageW - left - right
	boxH := pageH - y - bottom
	scale := boxW / float64(b.Dx())
	if s := boxH / float64(b.Dy()); s < scale {
		scale = s
	}
	imgW, imgH := float64(b.Dx())*scale, float64(b.Dy())*scale
	x := left + (boxW-imgW)/2
	pdf.ImageOptions("drawing", x, y, imgW, imgH, false, opt, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x, y, imgW, imgH, "D")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SaveFile writes img to path, choosing PNG, JPEG or PDF by extension.
func SaveFile(path string, img image.Image, opts SheetOptions) error {
	if img == nil {
		return render.ErrDetached
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".pdf":
	default:
		return fmt.Errorf("save %s: unsupported extension %q", path, ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	switch ext {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, render.Flatten(img, color.White), &jpeg.Options{Quality: JPEGQuality})
	case ".pdf":
		err = WritePDF(f, img, opts)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: closing file: %w", path, err)
	}
	return nil
}
