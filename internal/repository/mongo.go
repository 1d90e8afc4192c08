package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection stores documents in a MongoDB collection with a unique
// index on the key field.  Insertion order follows the generated _id.
type MongoCollection[K Key, T any] struct {
	coll  *mongo.Collection
	field string
}

func NewMongoCollection[K Key, T any](db *mongo.Database, name, field string) *MongoCollection[K, T] {
	return &MongoCollection[K, T]{coll: db.Collection(name), field: field}
}

// EnsureIndex creates the unique index on the key field.
func (m *MongoCollection[K, T]) EnsureIndex(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: m.field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_" + m.field),
	})
	return err
}

func (m *MongoCollection[K, T]) Get(ctx context.Context, key K) (T, error) {
	var out T
	err := m.coll.FindOne(ctx, bson.M{m.field: key}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	return out, err
}

func (m *MongoCollection[K, T]) Insert(ctx context.Context, _ K, doc T) error {
	_, err := m.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *MongoCollection[K, T]) Upsert(ctx context.Context, key K, doc T) error {
	_, err := m.coll.ReplaceOne(ctx, bson.M{m.field: key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoCollection[K, T]) Count(ctx context.Context) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.D{})
}

func (m *MongoCollection[K, T]) List(ctx context.Context, skip, limit int64) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoCollection[K, T]) Drop(ctx context.Context) error {
	if err := m.coll.Drop(ctx); err != nil {
		return err
	}
	return m.EnsureIndex(ctx)
}
