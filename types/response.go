package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Citation points the caller at the retrieved chunk an answer is grounded on.
// Content is truncated to a preview, not the full chunk.
type Citation struct {
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

type AskResponse struct {
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

type IngestResponse struct {
	DocumentIDs []string `json:"document_ids"`
	Message     string   `json:"message"`
	TotalChunks int      `json:"total_chunks"`
}

type ExtractResponse struct {
	DocumentID string         `json:"document_id"`
	Fields     ContractFields `json:"fields"`
}

type AuditResponse struct {
	DocumentID string        `json:"document_id"`
	TotalRisks int           `json:"total_risks"`
	Findings   []RiskFinding `json:"findings"`
	AuditDate  string        `json:"audit_date"`
}

type DocumentInfo struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
	NumPages   int    `json:"num_pages"`
	NumChunks  int    `json:"num_chunks"`
}

type ListDocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Total     int            `json:"total"`
}

type HealthResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type MetricsResponse struct {
	TotalDocuments   int64 `json:"total_documents"`
	TotalIngestions  int64 `json:"total_ingestions"`
	TotalExtractions int64 `json:"total_extractions"`
	TotalQuestions   int64 `json:"total_questions"`
	TotalAudits      int64 `json:"total_audits"`
	TotalStreams     int64 `json:"total_streams"`
}

// ProcessingDocumentStatus reports ingestion progress to the uploader.
type ProcessingDocumentStatus struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Progress       float64 `json:"progress"`
	TotalPages     int     `json:"total_pages"`
	ProcessedPages int     `json:"processed_pages"`
}
