package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// fakeEmbedder returns canned vectors, keyed by text. Texts without an entry
// get a unit vector so retrieval still works.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			result[i] = v
		} else {
			result[i] = []float32{1, 0}
		}
	}
	return result, nil
}

// failingIndex errors on every search.
type failingIndex struct{}

func (f *failingIndex) Upsert(ctx context.Context, documentID string, chunks []types.DocumentChunk, vectors [][]float32) error {
	return nil
}

func (f *failingIndex) Search(ctx context.Context, vector []float32, k int, documentIDs []string) ([]database.SearchHit, error) {
	return nil, errors.New("index unavailable")
}

func (f *failingIndex) Delete(ctx context.Context, documentID string) error {
	return nil
}

// fakeBackend replays a canned answer, in one piece for Generate and split
// into fragments for GenerateStream. It records the prompts it was given.
// A non-zero delay paces the stream, one pause per fragment.
type fakeBackend struct {
	answer    string
	fragments []string
	delay     time.Duration
	err       error

	mu         sync.Mutex
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeBackend) Generate(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeBackend) GenerateStream(ctx context.Context, system, user string, handler types.StreamHandler) error {
	f.mu.Lock()
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	fragments := f.fragments
	if fragments == nil {
		fragments = strings.SplitAfter(f.answer, " ")
	}
	for _, fragment := range fragments {
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := handler(fragment); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) lastUserMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUser
}

// fakeDocumentRepo is an in-memory DocumentRepo.
type fakeDocumentRepo struct {
	mu      sync.Mutex
	records map[string]*types.DocumentRecord
	updates int
}

func newFakeDocumentRepo(records ...*types.DocumentRecord) *fakeDocumentRepo {
	repo := &fakeDocumentRepo{records: make(map[string]*types.DocumentRecord)}
	for _, record := range records {
		repo.records[record.ID] = record
	}
	return repo
}

func (r *fakeDocumentRepo) CreateDocument(ctx context.Context, record *types.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

func (r *fakeDocumentRepo) GetDocument(ctx context.Context, id string) (*types.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, types.NewNotFoundError(fmt.Sprintf("document %s not found", id))
	}
	return record, nil
}

func (r *fakeDocumentRepo) ListDocuments(ctx context.Context) ([]*types.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]*types.DocumentRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	return records, nil
}

func (r *fakeDocumentRepo) UpdateDocument(ctx context.Context, record *types.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	r.updates++
	return nil
}

func (r *fakeDocumentRepo) DeleteDocument(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *fakeDocumentRepo) CountDocuments(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}
