// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mongo implements the document store on MongoDB. Field names follow the
// camelCase layout used by existing blog databases so they can be served as-is.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/olegiv/techblog/internal/store"
)

// connectTimeout bounds the initial connect and ping.
const connectTimeout = 10 * time.Second

// Store is the MongoDB-backed document store.
type Store struct {
	client     *mongo.Client
	db         *mongo.Database
	posts      *postRepo
	categories *categoryRepo
	users      *userRepo
	tags       *tagRepo
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := New(client.Database(database))
	s.client = client

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps a database handle. The caller owns the client.
func New(db *mongo.Database) *Store {
	return &Store{
		db:         db,
		posts:      &postRepo{coll: db.Collection(store.CollectionPosts)},
		categories: &categoryRepo{coll: db.Collection(store.CollectionCategories)},
		users:      &userRepo{coll: db.Collection(store.CollectionUsers)},
		tags:       &tagRepo{coll: db.Collection(store.CollectionTags)},
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for collection, models := range indexModels() {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating %s indexes: %w", collection, err)
		}
	}
	return nil
}

func indexModels() map[string][]mongo.IndexModel {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	// Users written without an "id" are left out of its unique index.
	userID := mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "id", Value: bson.D{{Key: "$type", Value: "string"}}}}),
	}
	return map[string][]mongo.IndexModel{
		store.CollectionPosts: {
			unique("slug"),
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "views", Value: -1}}},
		},
		store.CollectionCategories: {unique("id")},
		store.CollectionUsers:      {userID, unique("username"), unique("email")},
		store.CollectionTags:       {unique("name")},
	}
}

func (s *Store) Posts() store.PostRepository           { return s.posts }
func (s *Store) Categories() store.CategoryRepository { return s.categories }
func (s *Store) Users() store.UserRepository           { return s.users }
func (s *Store) Tags() store.TagRepository             { return s.tags }

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client when the store owns it.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// mapWriteError converts driver errors on writes to store sentinels.
func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapReadError converts driver errors on single-document reads to store sentinels.
func mapReadError(err error, op string) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
