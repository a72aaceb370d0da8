package audit

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production Store backed by a document collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore constructs a Mongo-backed audit store. The client lifecycle
// is managed by the caller.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the audit collection indexes: doc_type ascending,
// timestamp ascending, and a sparse compound (user_id, timestamp) index that
// only covers success documents.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "doc_type", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create audit indexes: %w", err)
	}
	return nil
}

// InsertMany writes the batch unordered so the store continues past
// individual document failures. Per-document rejections surface through the
// counts; any other error means the store is unavailable.
func (s *MongoStore) InsertMany(ctx context.Context, docs []Document) (int, int, error) {
	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = doc
	}

	_, err := s.coll.InsertMany(ctx, payload, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			failed := len(bulkErr.WriteErrors)
			return len(docs) - failed, failed, nil
		}
		return 0, 0, fmt.Errorf("insert audit documents: %w", err)
	}
	return len(docs), 0, nil
}
