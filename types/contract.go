package types

// Signatory is a person signing the contract.
type Signatory struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// LiabilityCap is the cap on liability, if any was found.
type LiabilityCap struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency,omitempty"`
}

// ContractFields holds the structured fields extracted from a contract.
// Every field is optional; missing fields stay at their zero value rather
// than being coerced from unrelated model output.
type ContractFields struct {
	Parties         []string      `json:"parties"`
	EffectiveDate   string        `json:"effective_date,omitempty"`
	Term            string        `json:"term,omitempty"`
	GoverningLaw    string        `json:"governing_law,omitempty"`
	PaymentTerms    string        `json:"payment_terms,omitempty"`
	Termination     string        `json:"termination,omitempty"`
	AutoRenewal     string        `json:"auto_renewal,omitempty"`
	Confidentiality string        `json:"confidentiality,omitempty"`
	Indemnity       string        `json:"indemnity,omitempty"`
	LiabilityCap    *LiabilityCap `json:"liability_cap,omitempty"`
	Signatories     []Signatory   `json:"signatories"`
}

// Risk types the auditor checks for.
const (
	RiskAutoRenewalShortNotice  = "AUTO_RENEWAL_SHORT_NOTICE"
	RiskUnlimitedLiability      = "UNLIMITED_LIABILITY"
	RiskBroadIndemnity          = "BROAD_INDEMNITY"
	RiskUnfavorableTermination  = "UNFAVORABLE_TERMINATION"
	RiskOneSidedConfidentiality = "ONE_SIDED_CONFIDENTIALITY"
	RiskUnreasonablePayment     = "UNREASONABLE_PAYMENT"
	RiskUnilateralChanges       = "UNILATERAL_CHANGES"
	RiskJurisdictionIssues      = "JURISDICTION_ISSUES"
)

// RiskFinding is a single risky clause identified by the audit.
type RiskFinding struct {
	RiskType       string `json:"risk_type"`
	Severity       string `json:"severity"` // "high", "medium" or "low"
	Description    string `json:"description"`
	Evidence       string `json:"evidence"`
	Recommendation string `json:"recommendation,omitempty"`
}
