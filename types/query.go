package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Validater interface {
	Validate() map[string]string
}

type QueryParams struct {
	Prompt string `json:"prompt" validate:"required"`
	TopK   int    `json:"top_k" validate:"gte=0,lte=100"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QueryParams) Validate() map[string]string {
	return validationErrors(validate.Struct(params))
}

// ValidateStruct runs the shared validator over any tagged struct.
func ValidateStruct(s any) map[string]string {
	return validationErrors(validate.Struct(s))
}

func validationErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	errors := make(map[string]string)
	for _, e := range errs {
		errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return errors
}

type SessionResponse struct {
	SessionID string   `json:"session_id"`
	Documents []string `json:"documents"`
	Pages     int      `json:"pages"`
	Chunks    int      `json:"chunks"`
	Model     string   `json:"model"`
}

type SearchResponse struct {
	Answer     string    `json:"answer"`
	Sources    []Source  `json:"sources"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}

type Source struct {
	ChunkText string  `json:"chunk_text"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// NewSources converts a retrieval to its wire form, most relevant first.
func NewSources(r RetrievalResult) []Source {
	sources := make([]Source, len(r))
	for i, sc := range r {
		sources[i] = Source{
			ChunkText: sc.Chunk.Content,
			Index:     sc.Chunk.Position,
			Score:     sc.Score,
		}
	}
	return sources
}
