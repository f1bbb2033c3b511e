package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/types"
)

const auditSystemPrompt = `You are a contract risk auditor. Analyze the contract text and identify risky clauses.

Focus on these risk categories:
1. AUTO_RENEWAL_SHORT_NOTICE: Auto-renewal with less than 30 days notice period
2. UNLIMITED_LIABILITY: No cap on liability or unreasonably high liability
3. BROAD_INDEMNITY: Overly broad indemnification obligations
4. UNFAVORABLE_TERMINATION: Difficult or one-sided termination conditions
5. ONE_SIDED_CONFIDENTIALITY: Confidentiality only binding on one party
6. UNREASONABLE_PAYMENT: Unfavorable payment terms or penalties
7. UNILATERAL_CHANGES: Right to change terms without consent
8. JURISDICTION_ISSUES: Unfavorable jurisdiction or governing law

For each risk found, return a JSON array with objects containing:
- risk_type: one of the categories above
- severity: "high", "medium", or "low"
- description: brief explanation of the risk
- evidence: exact quote from contract (max 300 chars)
- recommendation: suggested mitigation

Return ONLY a valid JSON array, no additional text. If no risks found, return empty array [].`

const maxEvidenceLen = 300

var knownRiskTypes = map[string]bool{
	types.RiskAutoRenewalShortNotice:  true,
	types.RiskUnlimitedLiability:      true,
	types.RiskBroadIndemnity:          true,
	types.RiskUnfavorableTermination:  true,
	types.RiskOneSidedConfidentiality: true,
	types.RiskUnreasonablePayment:     true,
	types.RiskUnilateralChanges:       true,
	types.RiskJurisdictionIssues:      true,
}

// AuditService flags risky clauses against the fixed risk taxonomy and
// appends the findings to the document record.
type AuditService struct {
	backend    GenerationBackend
	repo       repository.DocumentRepo
	textBudget int
	genTimeout time.Duration
}

func NewAuditService(backend GenerationBackend, repo repository.DocumentRepo, textBudget int, genTimeout time.Duration) *AuditService {
	return &AuditService{
		backend:    backend,
		repo:       repo,
		textBudget: textBudget,
		genTimeout: genTimeout,
	}
}

func (s *AuditService) AuditContract(ctx context.Context, documentID string) (*types.AuditResponse, error) {
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

	raw, err := s.backend.Generate(genCtx, auditSystemPrompt, "Analyze this contract for risks:\n\n"+fullText)
	if err != nil {
		return nil, err
	}

	findings := parseRiskFindings(raw)
	auditDate := time.Now().Format(time.RFC3339)

	record.AuditResults = &types.AuditResults{
		AuditDate:  auditDate,
		TotalRisks: len(findings),
		Findings:   findings,
	}
	if err := s.repo.UpdateDocument(ctx, record); err != nil {
		log.Printf("Warning: failed to save audit results for %s: %v", documentID, err)
	}

	return &types.AuditResponse{
		DocumentID: documentID,
		TotalRisks: len(findings),
		Findings:   findings,
		AuditDate:  auditDate,
	}, nil
}

// parseRiskFindings decodes and validates the model's findings. Malformed
// JSON falls back to no findings; individual findings outside the taxonomy
// or without a description are dropped, invalid severities are clamped to
// "medium" and over-long evidence is truncated.
func parseRiskFindings(raw string) []types.RiskFinding {
	var decoded []types.RiskFinding
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &decoded); err != nil {
		log.Printf("Warning: audit output was not valid JSON: %v", err)
		return []types.RiskFinding{}
	}

	findings := make([]types.RiskFinding, 0, len(decoded))
	for _, f := range decoded {
		if !knownRiskTypes[f.RiskType] || f.Description == "" {
			continue
		}
		switch f.Severity {
		case "high", "medium", "low":
		default:
			f.Severity = "medium"
		}
		if len(f.Evidence) > maxEvidenceLen {
			f.Evidence = f.Evidence[:maxEvidenceLen]
		}
		findings = append(findings, f)
	}
	return findings
}
