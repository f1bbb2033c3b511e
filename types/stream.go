package types

// Stream event types delivered to the caller, one JSON object per message.
const (
	TypeStreamCitations = "citations"
	TypeStreamToken     = "token"
	TypeStreamDone      = "done"
	TypeStreamError     = "error"
)

// StreamEvent is a single framed event of a streaming answer. Citations is
// set only for "citations" events; Content carries the token fragment or the
// error message.
type StreamEvent struct {
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
}

// StreamHandler receives answer fragments in generation order. Returning an
// error stops the stream; the backend must not call the handler again after
// that.
type StreamHandler func(fragment string) error
