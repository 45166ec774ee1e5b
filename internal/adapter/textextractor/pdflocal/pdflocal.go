// Package pdflocal extracts plain text from PDF documents.
//
// It reads the embedded text layer first and falls back to rasterizing each
// page and running OCR when the text layer is missing or empty, which is the
// common case for scanned CVs.
package pdflocal

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
	"github.com/fairyhunter13/agent-recruitment/pkg/textx"
)

// rasterDPI doubles the default 72 DPI so small glyphs survive OCR.
const rasterDPI = 144

// Extractor implements domain.TextExtractor for local PDF files.
type Extractor struct {
	// Languages are tesseract language codes tried together, e.g. ["eng","vie"].
	Languages []string
}

// New constructs an Extractor with the given OCR languages.
func New(languages []string) *Extractor {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Extractor{Languages: languages}
}

// Extract returns the document text. usedOCR reports whether the result came
// from rasterized pages rather than the text layer.
func (e *Extractor) Extract(ctx domain.Context, path string) (string, bool, error) {
	text, err := textLayer(path)
	if err != nil {
		return "", false, fmt.Errorf("op=pdflocal.extract: %w", err)
	}
	text = textx.SanitizeText(textx.CollapseSpaces(text))
	if text != "" {
		return text, false, nil
	}

	slog.Info("text layer empty, falling back to OCR", slog.String("path", path))
	observability.OCRFallbackTotal.Inc()
	text, err = e.ocr(ctx, path)
	if err != nil {
		return "", true, fmt.Errorf("op=pdflocal.ocr: %w", err)
	}
	text = textx.SanitizeText(textx.CollapseSpaces(text))
	if text == "" {
		return "", true, fmt.Errorf("op=pdflocal.extract: %w", domain.ErrEmptyDocument)
	}
	return text, true, nil
}

// textLayer reads the embedded text layer. The pdf reader panics on some
// malformed inputs, so recover and surface those as parse errors.
func textLayer(path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v: %w", rec, domain.ErrInvalidArgument)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open: %v: %w", err, domain.ErrInvalidArgument)
	}
	defer func() { _ = f.Close() }()

	rd, err := r.GetPlainText()
	if err != nil {
		// A broken text layer is not fatal; OCR may still work.
		slog.Warn("text layer unreadable", slog.String("path", path), slog.Any("error", err))
		return "", nil
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

// ocr rasterizes every page and feeds it to tesseract.
func (e *Extractor) ocr(ctx domain.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("fitz open: %v: %w", err, domain.ErrInvalidArgument)
	}
	defer func() { _ = doc.Close() }()

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()
	if err := client.SetLanguage(e.Languages...); err != nil {
		return "", fmt.Errorf("tesseract language: %w", err)
	}

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := doc.ImageDPI(i, rasterDPI)
		if err != nil {
			return "", fmt.Errorf("rasterize page %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode page %d: %w", i, err)
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return "", fmt.Errorf("ocr set page %d: %w", i, err)
		}
		pageText, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
