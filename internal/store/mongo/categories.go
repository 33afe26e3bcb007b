// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

type categoryRepo struct {
	coll *mongo.Collection
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}

	categories := make([]model.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.toModel())
	}
	return categories, nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (model.Category, error) {
	var d categoryDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&d); err != nil {
		return model.Category{}, mapReadError(err, "getting category")
	}
	return d.toModel(), nil
}

func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}
	return n > 0, nil
}

func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}
	return int(n), nil
}

func (r *categoryRepo) Insert(ctx context.Context, c model.Category) error {
	_, err := r.coll.InsertOne(ctx, categoryDoc{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	})
	return mapWriteError(err, "inserting category")
}

func (r *categoryRepo) Update(ctx context.Context, id string, patch model.CategoryPatch, updatedAt time.Time) (model.Category, error) {
	var d categoryDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "id", Value: id}}, categoryUpdate(patch, updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return model.Category{}, mapReadError(err, "updating category")
	}
	return d.toModel(), nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
