package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/contract-analysis-be/types"
)

func contractRecord(id, text string) *types.DocumentRecord {
	return &types.DocumentRecord{
		ID:       id,
		Filename: "contract.pdf",
		NumPages: 1,
		Pages:    []types.Page{{Number: 1, Text: text}},
	}
}

func TestExtractFields_ParsesModelOutput(t *testing.T) {
	backend := &fakeBackend{answer: `{
		"parties": ["Acme Corp", "Globex Inc"],
		"effective_date": "2025-01-01",
		"governing_law": "Delaware",
		"liability_cap": {"amount": 100000, "currency": "USD"},
		"signatories": [{"name": "Jane Doe", "title": "CEO"}]
	}`}
	repo := newFakeDocumentRepo(contractRecord("doc-1", "This agreement..."))
	svc := NewExtractService(backend, repo, 8000, time.Minute)

	fields, err := svc.ExtractFields(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp", "Globex Inc"}, fields.Parties)
	assert.Equal(t, "2025-01-01", fields.EffectiveDate)
	assert.Equal(t, "Delaware", fields.GoverningLaw)
	require.NotNil(t, fields.LiabilityCap)
	require.NotNil(t, fields.LiabilityCap.Amount)
	assert.Equal(t, float64(100000), *fields.LiabilityCap.Amount)
	require.Len(t, fields.Signatories, 1)
	assert.Equal(t, "Jane Doe", fields.Signatories[0].Name)

	// The extraction is appended to the stored record.
	record, err := repo.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	require.NotNil(t, record.ExtractedFields)
	assert.NotEmpty(t, record.ExtractionDate)
}

func TestExtractFields_StripsCodeFences(t *testing.T) {
	backend := &fakeBackend{answer: "```json\n{\"parties\": [\"Acme Corp\"]}\n```"}
	repo := newFakeDocumentRepo(contractRecord("doc-1", "text"))
	svc := NewExtractService(backend, repo, 8000, time.Minute)

	fields, err := svc.ExtractFields(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp"}, fields.Parties)
}

func TestExtractFields_MalformedOutputFallsBack(t *testing.T) {
	backend := &fakeBackend{answer: "I could not find any fields, sorry!"}
	repo := newFakeDocumentRepo(contractRecord("doc-1", "text"))
	svc := NewExtractService(backend, repo, 8000, time.Minute)

	fields, err := svc.ExtractFields(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.NotNil(t, fields.Parties)
	assert.Empty(t, fields.Parties)
	assert.NotNil(t, fields.Signatories)
	assert.Empty(t, fields.Signatories)
	assert.Nil(t, fields.LiabilityCap)
}

func TestExtractFields_UnknownDocument(t *testing.T) {
	svc := NewExtractService(&fakeBackend{}, newFakeDocumentRepo(), 8000, time.Minute)

	_, err := svc.ExtractFields(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrKindNotFound, types.KindOf(err))
}

func TestExtractFields_TruncatesToTextBudget(t *testing.T) {
	backend := &fakeBackend{answer: "{}"}
	longText := strings.Repeat("x", 500)
	repo := newFakeDocumentRepo(contractRecord("doc-1", longText))
	svc := NewExtractService(backend, repo, 100, time.Minute)

	_, err := svc.ExtractFields(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Contract text:\n\n"+longText[:100], backend.lastUserMessage())
}

func TestStripJSONFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripJSONFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripJSONFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripJSONFences(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripJSONFences("  {\"a\":1}\n"))
}
