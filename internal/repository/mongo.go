package repository

import (
	"context"
	"fmt"
	"time"

	"movie-finder-service/internal/model"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Documents = (*MongoDocuments)(nil)

// MongoDocuments is the MongoDB implementation of Documents
type MongoDocuments struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDocuments connects to MongoDB and ensures the count index exists
func NewMongoDocuments(ctx context.Context, uri, database, collection string) (*MongoDocuments, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "searchTerm", Value: 1}}},
		{Keys: bson.D{{Key: "count", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
	}

	log.Info().Str("database", database).Str("collection", collection).Msg("✅ MongoDB connected")

	return &MongoDocuments{client: client, collection: coll}, nil
}

func (s *MongoDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"searchTerm": term}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	var records []model.TrendingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return records, nil
}

func (s *MongoDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *MongoDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	update := bson.M{"$set": bson.M{"count": count, "updated_at": time.Now().UTC()}}
	res, err := s.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}, {Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	var records []model.TrendingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return records, nil
}

func (s *MongoDocuments) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
