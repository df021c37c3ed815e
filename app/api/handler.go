package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"time"

	"pdfbot/loader/pipeline"
	"pdfbot/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Builder builds a Session from a document set.
type Builder interface {
	Build(ctx context.Context, docs []types.Document) (*pipeline.Session, error)
}

type SessionHandler struct {
	builder  Builder
	sessions *Sessions
}

func NewSessionHandler(builder Builder, sessions *Sessions) *SessionHandler {
	return &SessionHandler{
		builder:  builder,
		sessions: sessions,
	}
}

// HandleCreate builds an index over the uploaded PDFs (multipart field "files").
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return ErrNoFiles()
	}
	files := form.File["files"]
	if len(files) == 0 {
		return ErrNoFiles()
	}

	docs := make([]types.Document, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return err
		}
		docs = append(docs, types.Document{Name: fh.Filename, Data: data})
	}
	log.Printf("[UPLOAD] %d file(s) received, building index", len(docs))

	sess, err := h.builder.Build(c.UserContext(), docs)
	if err != nil {
		return err
	}
	id := h.sessions.Add(sess)

	stats := sess.Stats()
	return c.Status(fiber.StatusCreated).JSON(&types.SessionResponse{
		SessionID: id.String(),
		Documents: sess.Documents(),
		Pages:     stats.Pages,
		Chunks:    stats.Chunks,
		Model:     stats.Model,
	})
}

func (h *SessionHandler) HandleAsk(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	ans, err := sess.Ask(c.UserContext(), params.Prompt, params.TopK)
	if err != nil {
		var synErr *types.SynthesisError
		if !errors.As(err, &synErr) {
			return err
		}
		// ответа нет, но найденные фрагменты все равно отдаем
		apiErr := FromError(err)
		return c.Status(apiErr.Code).JSON(&types.SearchResponse{
			Sources:    types.NewSources(synErr.Retrieved),
			Confidence: synErr.Retrieved.TopScore(),
			Timestamp:  time.Now(),
			Error:      apiErr.Message,
		})
	}

	return c.JSON(&types.SearchResponse{
		Answer:     ans.Text,
		Sources:    types.NewSources(ans.Retrieved),
		Confidence: ans.Retrieved.TopScore(),
		Timestamp:  ans.CreatedAt,
	})
}

func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}
	if err := h.sessions.Remove(id); err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			return ErrNotFound(id, "session")
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) session(c *fiber.Ctx) (*pipeline.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ErrInvalidID()
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, ErrNotFound(id, "session")
	}
	return sess, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
