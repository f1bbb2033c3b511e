package service

import (
	"context"

	"github.com/tieubaoca/contract-analysis-be/types"
)

// GenerationBackend is the language model behind answer generation. Batch
// and streaming modes produce the same content for identical inputs when the
// model is deterministic; streaming delivers it as ordered fragments through
// the handler instead. Implementations must stop calling the handler once it
// returns an error and must honor context cancellation between fragments.
type GenerationBackend interface {
	Generate(ctx context.Context, system, user string) (string, error)
	GenerateStream(ctx context.Context, system, user string, handler types.StreamHandler) error
}
