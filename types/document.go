package types

// Page holds the raw text of a single contract page, 1-based.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// DocumentChunk is the unit of embedding and retrieval: a bounded slice of a
// document's text with stable page attribution.
type DocumentChunk struct {
	DocumentID string // Owning document
	Index      int    // Sequence index within the document, insertion order
	Content    string // The actual text content
	Page       int    // Page containing the chunk's start offset
	Start      int    // Start offset in the document's concatenated text
}

// PageBoundary marks where a page begins in the concatenated document text.
type PageBoundary struct {
	Number int // 1-based page number
	Offset int // Start offset of the page in the full text
}

// DocumentServiceConfig contains configuration options for text chunking
type DocumentServiceConfig struct {
	ChunkSize    int // Maximum size for text chunks
	ChunkOverlap int // Character overlap between consecutive chunks
}
