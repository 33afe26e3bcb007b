// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/techblog/internal/model"
)

type tagRepo struct {
	coll *mongo.Collection
}

func (r *tagRepo) List(ctx context.Context) ([]model.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	var docs []tagDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	tags := make([]model.Tag, 0, len(docs))
	for _, d := range docs {
		tags = append(tags, model.Tag(d))
	}
	return tags, nil
}

func (r *tagRepo) Ensure(ctx context.Context, name string) error {
	_, err := r.coll.UpdateOne(ctx, bson.D{{Key: "name", Value: name}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "count", Value: 0}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ensuring tag %q: %w", name, err)
	}
	return nil
}

func (r *tagRepo) Adjust(ctx context.Context, name string, delta int) error {
	_, err := r.coll.UpdateOne(ctx, bson.D{{Key: "name", Value: name}}, clampedAdd("count", delta),
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("adjusting tag %q: %w", name, err)
	}
	return nil
}

// SetCounts resets every count and then writes the given ones. MongoDB
// standalone servers have no multi-document transactions, so a failure midway
// leaves partial counts; rerunning the recount repairs them.
func (r *tagRepo) SetCounts(ctx context.Context, counts map[string]int) error {
	if _, err := r.coll.UpdateMany(ctx, bson.D{},
		bson.D{{Key: "$set", Value: bson.D{{Key: "count", Value: 0}}}}); err != nil {
		return fmt.Errorf("resetting tag counts: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(counts))
	for name, n := range counts {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "name", Value: name}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{{Key: "count", Value: n}}}}).
			SetUpsert(true))
	}
	if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("setting tag counts: %w", err)
	}
	return nil
}
