package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/types"
)

const extractSystemPrompt = `Extract structured contract fields from the provided text and return a valid JSON object with these exact keys:
- parties: array of party names
- effective_date: date as string
- term: contract term/duration as string
- governing_law: jurisdiction/law as string
- payment_terms: payment details as string
- termination: termination conditions as string
- auto_renewal: auto-renewal clause as string
- confidentiality: confidentiality terms as string
- indemnity: indemnity clause as string
- liability_cap: object with "amount" (number) and "currency" (string)
- signatories: array of objects with "name" and "title"

If a field is not found, use null for strings/objects or empty array for arrays.
Return ONLY valid JSON, no additional text.`

// ExtractService pulls structured contract fields out of an ingested
// document with a single LLM call and appends them to the document record.
type ExtractService struct {
	backend    GenerationBackend
	repo       repository.DocumentRepo
	textBudget int
	genTimeout time.Duration
}

func NewExtractService(backend GenerationBackend, repo repository.DocumentRepo, textBudget int, genTimeout time.Duration) *ExtractService {
	return &ExtractService{
		backend:    backend,
		repo:       repo,
		textBudget: textBudget,
		genTimeout: genTimeout,
	}
}

func (s *ExtractService) ExtractFields(ctx context.Context, documentID string) (*types.ContractFields, error) {
	record, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	fullText := fullTextOf(record)
	if len(fullText) > s.textBudget {
		fullText = fullText[:s.textBudget]
	}

	genCtx := ctx
	if s.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}

	raw, err := s.backend.Generate(genCtx, extractSystemPrompt, "Contract text:\n\n"+fullText)
	if err != nil {
		return nil, err
	}

	fields := parseContractFields(raw)

	record.ExtractedFields = fields
	record.ExtractionDate = time.Now().Format(time.RFC3339)
	if err := s.repo.UpdateDocument(ctx, record); err != nil {
		log.Printf("Warning: failed to save extracted fields for %s: %v", documentID, err)
	}

	return fields, nil
}

// parseContractFields decodes the model's JSON. Malformed output falls back
// to an empty field set rather than failing the request.
func parseContractFields(raw string) *types.ContractFields {
	var fields types.ContractFields
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &fields); err != nil {
		log.Printf("Warning: extraction output was not valid JSON: %v", err)
		return &types.ContractFields{
			Parties:     []string{},
			Signatories: []types.Signatory{},
		}
	}
	if fields.Parties == nil {
		fields.Parties = []string{}
	}
	if fields.Signatories == nil {
		fields.Signatories = []types.Signatory{}
	}
	return &fields
}

// stripJSONFences removes a markdown code fence around a JSON payload.
// Some models wrap their output even when told not to.
func stripJSONFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// fullTextOf joins the record's page texts in page order.
func fullTextOf(record *types.DocumentRecord) string {
	texts := make([]string, 0, len(record.Pages))
	for _, page := range record.Pages {
		texts = append(texts, page.Text)
	}
	return strings.Join(texts, "\n")
}
