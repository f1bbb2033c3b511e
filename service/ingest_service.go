package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/types"
	"github.com/tieubaoca/contract-analysis-be/utils"
)

const previewLen = 500

// IngestService runs the write path of the pipeline: save the uploaded PDF,
// extract its pages, chunk, embed, index, and persist the metadata record.
// The document id it returns is the handle every later operation uses.
type IngestService struct {
	uploadDir  string
	pdfService PageExtractor
	chunker    *ChunkerService
	embedder   Embedder
	index      database.VectorIndex
	repo       repository.DocumentRepo
}

func NewIngestService(
	uploadDir string,
	pdfService PageExtractor,
	chunker *ChunkerService,
	embedder Embedder,
	index database.VectorIndex,
	repo repository.DocumentRepo,
) *IngestService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &IngestService{
		uploadDir:  uploadDir,
		pdfService: pdfService,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		repo:       repo,
	}
}

// IngestUpload stores an uploaded contract and indexes it. statusChan is
// optional; when set it receives progress updates and is never closed here.
func (s *IngestService) IngestUpload(ctx context.Context, req types.IngestRequest, file *multipart.FileHeader, statusChan chan<- types.ProcessingDocumentStatus) (*types.DocumentRecord, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := utils.SanitizeFilename(fmt.Sprintf("%s_%d%s",
		strings.TrimSuffix(file.Filename, ext), time.Now().Unix(), ext))
	destPath := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return nil, err
	}

	originalName := file.Filename
	if req.Title != "" {
		originalName = req.Title
	}
	return s.ingest(ctx, destPath, originalName, req.Tags, statusChan)
}

// IngestPath indexes a contract already on disk, used by the CLI commands.
func (s *IngestService) IngestPath(ctx context.Context, filePath string, tags []string) (*types.DocumentRecord, error) {
	destPath, err := utils.CopyFileWithTimestamp(filePath, s.uploadDir)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, destPath, filepath.Base(filePath), tags, nil)
}

func (s *IngestService) ingest(ctx context.Context, filePath, originalName string, tags []string, statusChan chan<- types.ProcessingDocumentStatus) (*types.DocumentRecord, error) {
	documentID := uuid.New().String()

	pages, err := s.pdfService.ExtractPages(filePath)
	if err != nil {
		return nil, err
	}
	s.report(ctx, statusChan, types.ProcessingDocumentStatus{
		Status:         "processing",
		Message:        "Extracted page text",
		Progress:       0.25,
		TotalPages:     len(pages),
		ProcessedPages: len(pages),
	})

	fullText, boundaries := JoinPages(pages)
	chunks := s.chunker.Chunk(documentID, fullText, boundaries)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s contains no extractable text", originalName)
	}
	s.report(ctx, statusChan, types.ProcessingDocumentStatus{
		Status:         "processing",
		Message:        fmt.Sprintf("Chunked into %d segments", len(chunks)),
		Progress:       0.5,
		TotalPages:     len(pages),
		ProcessedPages: len(pages),
	})

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	s.report(ctx, statusChan, types.ProcessingDocumentStatus{
		Status:         "processing",
		Message:        "Embedded chunks",
		Progress:       0.75,
		TotalPages:     len(pages),
		ProcessedPages: len(pages),
	})

	if err := s.index.Upsert(ctx, documentID, chunks, vectors); err != nil {
		return nil, err
	}

	preview := fullText
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	record := &types.DocumentRecord{
		ID:              documentID,
		Filename:        originalName,
		FilePath:        filePath,
		UploadDate:      time.Now().Format(time.RFC3339),
		NumPages:        len(pages),
		NumChunks:       len(chunks),
		Tags:            tags,
		Pages:           pages,
		FullTextPreview: preview,
	}
	if err := s.repo.CreateDocument(ctx, record); err != nil {
		// Keep the index and metadata in step: roll the vectors back so a
		// retry of the same file does not hit a conflict.
		s.index.Delete(ctx, documentID)
		return nil, err
	}

	s.report(ctx, statusChan, types.ProcessingDocumentStatus{
		Status:         "completed",
		Message:        "Done processing PDF",
		Progress:       1,
		TotalPages:     len(pages),
		ProcessedPages: len(pages),
	})
	return record, nil
}

// DeleteDocument removes a contract from the index and the registry.
func (s *IngestService) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.repo.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.index.Delete(ctx, documentID); err != nil {
		return err
	}
	return s.repo.DeleteDocument(ctx, documentID)
}

// report delivers a progress update unless the receiver is gone. The channel
// is owned by the caller and never closed here; a cancelled context is the
// only signal that nobody is listening anymore.
func (s *IngestService) report(ctx context.Context, statusChan chan<- types.ProcessingDocumentStatus, status types.ProcessingDocumentStatus) {
	if statusChan == nil {
		return
	}
	select {
	case statusChan <- status:
	case <-ctx.Done():
	}
}
