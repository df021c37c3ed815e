package internal

import (
	"context"
	"testing"

	"pdfbot/testutil"
	"pdfbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_SinglePage(t *testing.T) {
	doc := types.Document{Name: "sky.pdf", Data: testutil.PDF("The sky is blue.")}

	text, err := NewExtractor().ExtractText(context.Background(), []types.Document{doc})
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", text)
}

func TestExtractText_PagesJoinedInOrder(t *testing.T) {
	docs := []types.Document{
		{Name: "a.pdf", Data: testutil.PDF("first page", "", "second page")},
		{Name: "b.pdf", Data: testutil.PDF("third page")},
	}

	text, err := NewExtractor().ExtractText(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, "first page\nsecond page\nthird page", text)
}

func TestExtractText_SkipsEmptyDocument(t *testing.T) {
	docs := []types.Document{
		{Name: "blank.pdf", Data: testutil.PDF("", "")},
		{Name: "content.pdf", Data: testutil.PDF("Only this counts.")},
	}

	text, err := NewExtractor().ExtractText(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, "Only this counts.", text)
}

func TestExtractText_NoReadableText(t *testing.T) {
	tests := []struct {
		name string
		docs []types.Document
	}{
		{"no documents", nil},
		{"blank pages", []types.Document{{Name: "blank.pdf", Data: testutil.PDF("", "  ")}}},
		{"not a pdf", []types.Document{{Name: "junk.pdf", Data: []byte("definitely not a pdf")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewExtractor().ExtractText(context.Background(), tt.docs)
			assert.ErrorIs(t, err, types.ErrEmptyDocument)
			assert.Empty(t, text)
		})
	}
}

func TestExtractText_UnreadableDocumentDoesNotFailBatch(t *testing.T) {
	docs := []types.Document{
		{Name: "junk.pdf", Data: []byte("%PDF-1.4 truncated")},
		{Name: "ok.pdf", Data: testutil.PDF("readable")},
	}

	text, err := NewExtractor().ExtractText(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, "readable", text)
}

func TestPages(t *testing.T) {
	doc := types.Document{Name: "multi.pdf", Data: testutil.PDF("one", "", "three")}

	pages := NewExtractor().Pages(context.Background(), doc)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, "multi.pdf", p.Document)
	}
	assert.Contains(t, pages[0].Text, "one")
	assert.Empty(t, pages[1].Text)
	assert.Contains(t, pages[2].Text, "three")
}

func TestExtractText_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor().ExtractText(ctx, []types.Document{{Name: "a.pdf", Data: testutil.PDF("x")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(testutil.PDF("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = PageCount([]byte("nope"))
	assert.Error(t, err)
}

func TestDecryptEmptyPassword_RejectsGarbage(t *testing.T) {
	_, err := DecryptEmptyPassword([]byte("nope"))
	assert.Error(t, err)
}
