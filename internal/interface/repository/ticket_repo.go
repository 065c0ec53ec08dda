package repository

import (
	"context"
	"errors"
	"fmt"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTicketRepository implements TicketRepository
type MongoTicketRepository struct {
	collection *mongo.Collection
}

// NewMongoTicketRepository creates a new ticket record repository
func NewMongoTicketRepository(db *mongo.Database, collectionName string) *MongoTicketRepository {
	return &MongoTicketRepository{
		collection: db.Collection(collectionName),
	}
}

var _ repository.TicketRepository = (*MongoTicketRepository)(nil)

// EnsureIndexes creates the unique id index and the creation_date range index
func (r *MongoTicketRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"id": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.M{"creation_date": 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// FindByTicketID finds a record by ticket id, returning nil when none is stored
func (r *MongoTicketRepository) FindByTicketID(ctx context.Context, id int64) (*entity.TicketRecord, error) {
	var record entity.TicketRecord
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Insert stores a new record
func (r *MongoTicketRepository) Insert(ctx context.Context, record *entity.TicketRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// Replace overwrites the whole document stored under the record's ticket id
func (r *MongoTicketRepository) Replace(ctx context.Context, record *entity.TicketRecord) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": record.ID}, record)
	return err
}

// Find returns all records matching filter, oldest first
func (r *MongoTicketRepository) Find(ctx context.Context, filter bson.M) ([]*entity.TicketRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creation_date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]*entity.TicketRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Distinct returns the distinct string values stored in field
func (r *MongoTicketRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result, nil
}
