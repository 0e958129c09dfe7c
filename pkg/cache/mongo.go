package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB locations for cache entries.
const (
	DefaultMongoDatabase   = "repostats"
	DefaultMongoCollection = "cache"
)

// Mongo is a durable tier backed by a MongoDB collection.
//
// Entries carry an expires_at field covered by a TTL index, so the server
// removes them eventually. The TTL monitor runs about once a minute; Get
// checks expires_at itself so expired documents are never returned.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	clock  clockwork.Clock
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// NewMongo connects to uri and prepares the TTL index on
// database.collection. Empty names use the defaults.
func NewMongo(ctx context.Context, uri, database, collection string, clock clockwork.Clock) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	m, err := NewMongoFromClient(ctx, client, database, collection, clock)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// NewMongoFromClient uses an existing client. Close disconnects it.
func NewMongoFromClient(ctx context.Context, client *mongo.Client, database, collection string, clock clockwork.Clock) (*Mongo, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &Mongo{client: client, coll: coll, clock: clock}, nil
}

// Ping checks that the primary answers.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Get retrieves a value.
func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !m.clock.Now().Before(e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set upserts a value. A non-positive ttl deletes the key.
func (m *Mongo) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return m.Delete(ctx, key)
	}
	e := mongoEntry{Key: key, Data: data, ExpiresAt: m.clock.Now().Add(ttl).UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Cache = (*Mongo)(nil)
