package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// gridBucket is the part of *gridfs.Bucket the store uses
type gridBucket interface {
	UploadFromStream(filename string, source io.Reader, opts ...*options.UploadOptions) (primitive.ObjectID, error)
	DownloadToStreamByName(filename string, stream io.Writer, opts ...*options.NameOptions) (int64, error)
	DeleteContext(ctx context.Context, fileID interface{}) error
	FindContext(ctx context.Context, filter interface{}, opts ...*options.GridFSFindOptions) (*mongo.Cursor, error)
}

// GridFSStore keeps artifacts as GridFS files named by key
type GridFSStore struct {
	bucket gridBucket
	logger zerolog.Logger
}

// NewGridFSStore opens the named bucket
func NewGridFSStore(db *mongo.Database, bucketName string, logger zerolog.Logger) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, logger: logger}, nil
}

// Put uploads a new revision, then removes the older ones. Readers see either
// the previous or the new revision, never a partial upload. Once the upload
// succeeds the write has happened, so cleanup failures are only logged; Get
// always serves the newest revision.
func (s *GridFSStore) Put(ctx context.Context, key string, content []byte) error {
	previous, err := s.revisions(ctx, key)
	if err != nil {
		return err
	}

	if _, err := s.bucket.UploadFromStream(key, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	for _, id := range previous {
		if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Interface("revision", id).Msg("Failed to remove old artifact revision")
		}
	}
	return nil
}

// Get downloads the newest revision of key
func (s *GridFSStore) Get(ctx context.Context, key string) ([]byte, error) {
	var buf bytes.Buffer
	_, err := s.bucket.DownloadToStreamByName(key, &buf)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("%s not found", key), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Exists reports whether key has a revision
func (s *GridFSStore) Exists(ctx context.Context, key string) (bool, error) {
	ids, err := s.revisions(ctx, key)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// Delete removes every revision of key
func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	ids, err := s.revisions(ctx, key)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *GridFSStore) revisions(ctx context.Context, key string) ([]interface{}, error) {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": key})
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", key, err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	ids := make([]interface{}, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids, nil
}
