package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tieubaoca/contract-analysis-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type DocumentRepo interface {
	CreateDocument(ctx context.Context, record *types.DocumentRecord) error
	GetDocument(ctx context.Context, id string) (*types.DocumentRecord, error)
	ListDocuments(ctx context.Context) ([]*types.DocumentRecord, error)
	UpdateDocument(ctx context.Context, record *types.DocumentRecord) error
	DeleteDocument(ctx context.Context, id string) error
	CountDocuments(ctx context.Context) (int64, error)
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(collection *mongo.Collection) DocumentRepo {
	return &documentRepo{
		collection: collection,
	}
}

func (r *documentRepo) CreateDocument(ctx context.Context, record *types.DocumentRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *documentRepo) GetDocument(ctx context.Context, id string) (*types.DocumentRecord, error) {
	var record types.DocumentRecord
	err := r.collection.FindOne(ctx, map[string]string{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.NewNotFoundError(fmt.Sprintf("document %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context) ([]*types.DocumentRecord, error) {
	cursor, err := r.collection.Find(ctx, map[string]string{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*types.DocumentRecord
	for cursor.Next(ctx) {
		var record types.DocumentRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

func (r *documentRepo) UpdateDocument(ctx context.Context, record *types.DocumentRecord) error {
	_, err := r.collection.ReplaceOne(ctx, map[string]string{"_id": record.ID}, record)
	return err
}

func (r *documentRepo) DeleteDocument(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]string{"_id": id})
	return err
}

func (r *documentRepo) CountDocuments(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, map[string]string{})
}
