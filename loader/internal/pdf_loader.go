package internal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pdfbot/types"

	"github.com/ledongthuc/pdf"
)

// Extractor turns PDF bytes into one normalized text stream.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor() *Extractor {
	return &Extractor{
		logger: slog.Default(),
	}
}

// Extraction is the normalized text of a document set.
type Extraction struct {
	Text  string
	Pages int // страницы, в которых нашелся текст
}

// ExtractText reads every page of every document in order and joins the
// non-empty pages with a newline. Unreadable pages and documents are skipped.
func (e *Extractor) ExtractText(ctx context.Context, docs []types.Document) (string, error) {
	ex, err := e.Extract(ctx, docs)
	if err != nil {
		return "", err
	}
	return ex.Text, nil
}

func (e *Extractor) Extract(ctx context.Context, docs []types.Document) (*Extraction, error) {
	start := time.Now()

	var (
		b     strings.Builder
		pages int
	)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, page := range e.Pages(ctx, doc) {
			text := strings.TrimSpace(page.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text)
			pages++
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return nil, types.ErrEmptyDocument
	}

	e.logger.Info("extracted",
		"documents", len(docs),
		"pages_with_text", pages,
		"chars", b.Len(),
		"took", time.Since(start),
	)
	return &Extraction{Text: b.String(), Pages: pages}, nil
}

// Pages returns the raw text of each page of doc. A document that cannot be
// opened, even after an empty-password decrypt, yields no pages.
func (e *Extractor) Pages(ctx context.Context, doc types.Document) []types.Page {
	r, err := openReader(doc.Data)
	if err != nil {
		plain, derr := DecryptEmptyPassword(doc.Data)
		if derr == nil {
			r, err = openReader(plain)
		}
	}
	if err != nil {
		e.logger.Warn("skipping unreadable document", "document", doc.Name, "err", err)
		return nil
	}

	n := r.NumPage()
	pages := make([]types.Page, 0, n)
	for i := 1; i <= n; i++ {
		if ctx.Err() != nil {
			break
		}
		text, err := pageText(r, i)
		if err != nil {
			e.logger.Debug("page has no readable text", "document", doc.Name, "page", i, "err", err)
		}
		pages = append(pages, types.Page{
			Document: doc.Name,
			Number:   i,
			Text:     text,
		})
	}
	return pages
}

func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("malformed PDF: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageText never fails the document: decoder panics become an empty page.
func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("page %d: %v", num, p)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return text, nil
}
