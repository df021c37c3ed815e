package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pdfbot/types"

	"github.com/pkoukk/tiktoken-go"
)

// Completer sends one prompt to a language model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

var errEmptyResponse = errors.New("model returned an empty response")

const promptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// BuildPrompt puts every retrieved chunk verbatim into the context block.
func BuildPrompt(query string, retrieved types.RetrievalResult) string {
	return fmt.Sprintf(promptTemplate, strings.Join(retrieved.Contents(), "\n\n"), query)
}

type Synthesizer struct {
	completer   Completer
	temperature float32
	logger      *slog.Logger
}

type Option func(*Synthesizer)

func WithTemperature(t float32) Option {
	return func(s *Synthesizer) {
		s.temperature = t
	}
}

func NewSynthesizer(c Completer, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		completer: c,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize asks the model once. Failures keep the retrieval so the caller
// can still show what the answer would have been grounded on.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, retrieved types.RetrievalResult) (*types.Answer, error) {
	start := time.Now()
	prompt := BuildPrompt(query, retrieved)

	if s.logger.Enabled(ctx, slog.LevelDebug) {
		if n, err := CountTokens(prompt); err == nil {
			s.logger.Debug("prompt", "tokens", n, "chars", len(prompt), "chunks", len(retrieved))
		}
	}

	text, err := s.completer.Complete(ctx, prompt, s.temperature)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, &types.SynthesisError{
			Retrieved:  retrieved,
			StatusCode: types.StatusCode(err),
			Err:        err,
		}
	}

	s.logger.Info("answer synthesized", "chunks", len(retrieved), "took", time.Since(start))
	return &types.Answer{
		Text:      text,
		Retrieved: retrieved,
		CreatedAt: time.Now(),
	}, nil
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// CountTokens reports the prompt size in cl100k_base tokens. The encoding is
// fetched on first use.
func CountTokens(text string) (int, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.EncodingForModel("gpt-3.5-turbo")
	})
	if encErr != nil {
		return 0, encErr
	}
	return len(enc.Encode(text, nil, nil)), nil
}
