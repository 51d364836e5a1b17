package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"joinsync/internal/models"
)

// Store keeps join requests as documents in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// defaultDatabase is what the server uses when neither the config nor
// the URI path names a database.
const defaultDatabase = "test"

// DatabaseName picks the configured database, then the one in the URI
// path, then defaultDatabase.
func DatabaseName(uri, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	cs, err := connstring.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return defaultDatabase, nil
}

// Open connects, pings and returns a store owning the client. An empty
// database is resolved with DatabaseName.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	database, err := DatabaseName(uri, database)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// New wraps a collection whose client is owned by the caller.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

func (s *Store) FindAll(ctx context.Context) ([]models.JoinRequest, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		// documents written without a status carry the schema default
		if out[i].Status == "" {
			out[i].Status = models.StatusPending
		}
	}
	return out, nil
}

func (s *Store) ConditionalUpdateStatus(ctx context.Context, telegramID string, expected, next models.Status) (*models.JoinRequest, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("invalid status %q", next)
	}
	filter := bson.D{{Key: "telegramId", Value: telegramID}, {Key: "status", Value: expected}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: next}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var jr models.JoinRequest
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&jr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &jr, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
