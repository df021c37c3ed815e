package internal

import (
	"pdfbot/types"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Порядок важен: сначала самые крупные границы.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// Splitter cuts normalized text into overlapping chunks of at most
// chunkSize runes. Separators stay attached to the piece they end.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

type SplitterOption func(*Splitter)

// WithSeparators replaces the separator list. An empty string means a hard
// cut on rune boundaries and is appended when missing.
func WithSeparators(seps ...string) SplitterOption {
	return func(s *Splitter) {
		s.separators = append([]string(nil), seps...)
	}
}

func NewSplitter(chunkSize, chunkOverlap int, opts ...SplitterOption) (*Splitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, &types.ChunkConfigError{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
	}

	s := &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if n := len(s.separators); n == 0 || s.separators[n-1] != "" {
		s.separators = append(s.separators, "")
	}
	return s, nil
}

// Split is a shorthand for NewSplitter(size, overlap).Split(text).
func Split(text string, chunkSize, chunkOverlap int) ([]types.Chunk, error) {
	s, err := NewSplitter(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return s.Split(text)
}

func (s *Splitter) ChunkSize() int    { return s.chunkSize }
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

type span struct {
	start, end int
}

func (s *Splitter) Split(text string) ([]types.Chunk, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= s.chunkSize {
		return []types.Chunk{{Position: 0, Content: text, Start: 0, End: len(runes)}}, nil
	}

	// Каждый кусок влезает в тело любого чанка, даже после префикса перекрытия.
	pieces := s.pieces(runes, span{0, len(runes)}, s.separators, s.chunkSize-s.chunkOverlap, nil)

	var chunks []types.Chunk
	prevStart := 0
	for i := 0; i < len(pieces); {
		bodyStart := pieces[i].start
		prefixStart := bodyStart
		if len(chunks) > 0 {
			prefixStart = max(prevStart, bodyStart-s.chunkOverlap)
		}
		limit := s.chunkSize - (bodyStart - prefixStart)

		bodyEnd := pieces[i].end
		i++
		for i < len(pieces) && pieces[i].end-bodyStart <= limit {
			bodyEnd = pieces[i].end
			i++
		}

		chunks = append(chunks, types.Chunk{
			Position: len(chunks),
			Content:  string(runes[prefixStart:bodyEnd]),
			Start:    prefixStart,
			End:      bodyEnd,
			Overlap:  bodyStart - prefixStart,
		})
		prevStart = prefixStart
	}
	return chunks, nil
}

// pieces splits sp on the coarsest separator present, recursing into parts
// that are still longer than limit.
func (s *Splitter) pieces(text []rune, sp span, seps []string, limit int, out []span) []span {
	if sp.end-sp.start <= limit {
		return append(out, sp)
	}

	for i, sep := range seps {
		if sep == "" {
			for p := sp.start; p < sp.end; p += limit {
				out = append(out, span{p, min(p+limit, sp.end)})
			}
			return out
		}

		parts := splitKeep(text, sp, []rune(sep))
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			out = s.pieces(text, part, seps[i+1:], limit, out)
		}
		return out
	}
	return append(out, sp)
}

func splitKeep(text []rune, sp span, sep []rune) []span {
	var parts []span
	from := sp.start
	for i := sp.start; i+len(sep) <= sp.end; {
		if hasPrefix(text[i:], sep) {
			i += len(sep)
			parts = append(parts, span{from, i})
			from = i
			continue
		}
		i++
	}
	if from < sp.end {
		parts = append(parts, span{from, sp.end})
	}
	return parts
}

func hasPrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
