package types

// DocumentRecord is the metadata record persisted per ingested contract.
// The core pipeline only writes it once at ingestion; extraction and audit
// append their annotations afterwards.
type DocumentRecord struct {
	ID              string          `bson:"_id" json:"document_id"`
	Filename        string          `bson:"filename" json:"filename"`
	FilePath        string          `bson:"file_path" json:"file_path"`
	UploadDate      string          `bson:"upload_date" json:"upload_date"`
	NumPages        int             `bson:"num_pages" json:"num_pages"`
	NumChunks       int             `bson:"num_chunks" json:"num_chunks"`
	Tags            []string        `bson:"tags,omitempty" json:"tags,omitempty"`
	Pages           []Page          `bson:"pages" json:"-"`
	FullTextPreview string          `bson:"full_text_preview" json:"full_text_preview"`
	ExtractedFields *ContractFields `bson:"extracted_fields,omitempty" json:"extracted_fields,omitempty"`
	ExtractionDate  string          `bson:"extraction_date,omitempty" json:"extraction_date,omitempty"`
	AuditResults    *AuditResults   `bson:"audit_results,omitempty" json:"audit_results,omitempty"`
}

// AuditResults is the audit annotation stored on the document record.
type AuditResults struct {
	AuditDate  string        `bson:"audit_date" json:"audit_date"`
	TotalRisks int           `bson:"total_risks" json:"total_risks"`
	Findings   []RiskFinding `bson:"findings" json:"findings"`
}
