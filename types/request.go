package types

// AskRequest asks a question about previously ingested contracts.
// DocumentIDs limits retrieval to those documents; empty means all.
type AskRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids,omitempty"`
	K           int      `json:"k,omitempty"`
}

type ExtractRequest struct {
	DocumentID string `json:"document_id"`
}

type AuditRequest struct {
	DocumentID string `json:"document_id"`
}

// IngestRequest carries the upload form metadata alongside the PDF file.
type IngestRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}
