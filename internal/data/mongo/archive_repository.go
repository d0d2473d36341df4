// Package mongo provides the archive transaction source backed by MongoDB.
// The archive holds parking transactions migrated from the legacy system and
// is read-only from this service's point of view.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parkops/backoffice/internal/domain/transaction"
)

const (
	// ArchiveCollectionName is the name of the archived transactions collection in MongoDB
	ArchiveCollectionName = "parking_transactions"
)

// ArchiveRepository implements the transaction.Source interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) transaction.Source {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Fetch retrieves archived transactions sorted by creation time in
// descending order (newest first). A limit of zero or less means no limit.
func (r *ArchiveRepository) Fetch(ctx context.Context, limit int) ([]transaction.Record, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to query archived transactions", "error", err)
		return nil, fmt.Errorf("failed to query archived transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []transaction.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode archived transactions", "error", err)
		return nil, fmt.Errorf("failed to decode archived transactions: %w", err)
	}

	return records, nil
}
