package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

const FakeDimension = 64

// Embedder hashes lowercased words into a fixed-size vector, so texts that
// share words are close under cosine similarity.
type Embedder struct {
	Model string
	Err   error // returned from every Embed call when set

	mu    sync.Mutex
	calls [][]string
}

func NewEmbedder() *Embedder {
	return &Embedder{Model: "fake-embedding"}
}

func (e *Embedder) ModelName() string {
	return e.Model
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vector(t)
	}
	return out, nil
}

// Calls returns the batches Embed was called with.
func (e *Embedder) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

// Vector is the embedding the fake produces for text. It is never zero.
func Vector(text string) []float32 {
	v := make([]float32, FakeDimension)
	v[0] = 0.01
	for _, w := range Words(text) {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[1+int(h.Sum32()%(FakeDimension-1))] += 1
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Completer answers with Respond, or with Response when Respond is nil.
type Completer struct {
	Response string
	Respond  func(prompt string) (string, error)
	Err      error

	mu           sync.Mutex
	prompts      []string
	temperatures []float32
}

func (c *Completer) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.temperatures = append(c.temperatures, temperature)
	c.mu.Unlock()

	if c.Err != nil {
		return "", c.Err
	}
	if c.Respond != nil {
		return c.Respond(prompt)
	}
	return c.Response, nil
}

func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

func (c *Completer) Temperatures() []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float32(nil), c.temperatures...)
}
