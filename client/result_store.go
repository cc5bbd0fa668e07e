package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	"github.com/parkledger/statement-extraction/dto"
)

// GCSResultStore persists finished extraction results as JSON objects in a
// bucket. Durability is this collaborator's problem; the extraction engine
// only hands results over.
type GCSResultStore struct {
	client *storage.Client
	bucket string
}

func NewGCSResultStore(ctx context.Context, bucket string) (*GCSResultStore, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSResultStore{client: c, bucket: bucket}, nil
}

type storedResult struct {
	Result    *dto.ExtractionResult  `json:"result"`
	Statement *dto.StatementResponse `json:"statement"`
}

// SaveExtraction writes one result under extractions/<id>.json.
func (s *GCSResultStore) SaveExtraction(ctx context.Context, result *dto.ExtractionResult, response *dto.StatementResponse) error {
	payload, err := json.Marshal(storedResult{Result: result, Statement: response})
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	objectName := fmt.Sprintf("extractions/%s.json", result.ID)
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", objectName, err)
	}
	return nil
}

func (s *GCSResultStore) Close() error {
	return s.client.Close()
}
