package types

import (
	"time"
)

// Document is a raw PDF source handed to the pipeline.
type Document struct {
	Name string // Имя файла, как его прислал клиент
	Data []byte
}

// Page is the text of a single PDF page. Text is empty when the page has no
// decodable text (scanned or encrypted pages).
type Page struct {
	Document string
	Number   int
	Text     string
}

type Chunk struct {
	Position int    // порядок вставки, начиная с 0
	Content  string // сам текст, включая перекрытие с предыдущим чанком
	Start    int    // смещение начала в рунах
	End      int
	Overlap  int // сколько рун в начале совпадает с хвостом предыдущего чанка
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult is ordered most relevant first.
type RetrievalResult []ScoredChunk

// TopScore returns the best similarity or 0 for an empty result.
func (r RetrievalResult) TopScore() float64 {
	if len(r) == 0 {
		return 0
	}
	return r[0].Score
}

// Contents returns the chunk texts in result order.
func (r RetrievalResult) Contents() []string {
	out := make([]string, len(r))
	for i, sc := range r {
		out[i] = sc.Chunk.Content
	}
	return out
}

type Answer struct {
	Text      string
	Retrieved RetrievalResult
	CreatedAt time.Time
}

// BuildStats describes one pipeline run over a document set.
type BuildStats struct {
	Documents  int
	Pages      int
	Characters int
	Chunks     int
	Model      string
	Dimension  int
	Took       time.Duration
}
