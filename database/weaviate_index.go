package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tieubaoca/contract-analysis-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CONTRACT_CHUNK_CLASS        = "ContractChunk"
	CONTRACT_CHUNK_CLASS_OBJECT = &models.Class{
		Class: CONTRACT_CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "startOffset", DataType: []string{"int"}},
		},
		// Vectors are supplied by the embedding gateway, not a weaviate module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndex is the production VectorIndex backed by a weaviate instance.
type WeaviateIndex struct {
	client *weaviate.Client
}

type WeaviateIndexConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

func NewWeaviateIndex(config WeaviateIndexConfig) (*WeaviateIndex, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CONTRACT_CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CONTRACT_CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create ContractChunk class: %v", err)
		}
	}
	return &WeaviateIndex{
		client: client,
	}, nil
}

// ReInit drops and recreates the chunk class, wiping every stored vector.
func (s *WeaviateIndex) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CONTRACT_CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete ContractChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CONTRACT_CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create ContractChunk class: %v", err)
	}
	return nil
}

func (s *WeaviateIndex) Upsert(ctx context.Context, documentID string, chunks []types.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	exists, err := s.documentExists(ctx, documentID)
	if err != nil {
		return err
	}
	if exists {
		return types.NewConflictError(fmt.Sprintf("document %s already indexed, delete it first", documentID))
	}

	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"content":     chunks[j].Content,
				"documentId":  documentID,
				"page":        chunks[j].Page,
				"chunkIndex":  chunks[j].Index,
				"startOffset": chunks[j].Start,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      CONTRACT_CHUNK_CLASS,
				Properties: properties,
				Vector:     vectors[j],
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
	}

	return nil
}

func (s *WeaviateIndex) Search(ctx context.Context, vector []float32, k int, documentIDs []string) ([]SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid k: %d", k)
	}
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "page"},
		{Name: "chunkIndex"},
		{Name: "startOffset"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CONTRACT_CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k)
	if len(documentIDs) > 0 {
		getBuilder = getBuilder.WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.ContainsAny).
			WithValueText(documentIDs...))
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var hits []SearchHit
	if data, ok := result.Data["Get"].(map[string]interface{})[CONTRACT_CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			hit := SearchHit{
				Chunk: types.DocumentChunk{
					DocumentID: obj["documentId"].(string),
					Content:    obj["content"].(string),
					Page:       int(obj["page"].(float64)),
					Index:      int(obj["chunkIndex"].(float64)),
					Start:      int(obj["startOffset"].(float64)),
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				// Weaviate reports cosine distance; convert back to similarity.
				hit.Score = 1 - float32(additional["distance"].(float64))
			}
			hits = append(hits, hit)
		}
	}

	// Weaviate does not guarantee a tie order, so impose one: score
	// descending, then document id and chunk index for determinism. This is
	// not the memory index's tie order: that one breaks ties by insertion
	// sequence, which Weaviate does not store across documents. Equal-score
	// results can therefore rank differently between the two backends.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.DocumentID != hits[j].Chunk.DocumentID {
			return hits[i].Chunk.DocumentID < hits[j].Chunk.DocumentID
		}
		return hits[i].Chunk.Index < hits[j].Chunk.Index
	})

	return hits, nil
}

func (s *WeaviateIndex) Delete(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CONTRACT_CHUNK_CLASS).
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(documentID)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks of document %s: %v", documentID, err)
	}
	return nil
}

func (s *WeaviateIndex) documentExists(ctx context.Context, documentID string) (bool, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(CONTRACT_CHUNK_CLASS).
		WithFields(graphql.Field{Name: "documentId"}).
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(documentID)).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return false, err
	}
	if result.Errors != nil {
		return false, fmt.Errorf("existence check failed: %v", result.Errors[0].Message)
	}
	data, ok := result.Data["Get"].(map[string]interface{})[CONTRACT_CHUNK_CLASS].([]interface{})
	return ok && len(data) > 0, nil
}
