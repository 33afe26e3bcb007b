// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

type postRepo struct {
	coll *mongo.Collection
}

// errBadID signals a post ID that is not an ObjectID; such posts cannot exist.
var errBadID = errors.New("invalid object id")

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, errBadID
	}
	return oid, nil
}

func (r *postRepo) List(ctx context.Context, filter model.PostFilter, sort model.PostSort) ([]model.Post, error) {
	sortDoc, err := postSort(sort)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, postFilter(filter), options.Find().SetSort(sortDoc))
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}

	posts := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toModel())
	}
	return posts, nil
}

func (r *postRepo) findOne(ctx context.Context, filter bson.D) (model.Post, error) {
	var d postDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return model.Post{}, mapReadError(err, "getting post")
	}
	return d.toModel(), nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Post{}, store.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *postRepo) GetBySlug(ctx context.Context, slug string) (model.Post, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (r *postRepo) count(ctx context.Context, filter bson.D) (int, error) {
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return int(n), nil
}

func (r *postRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.count(ctx, bson.D{{Key: "slug", Value: slug}})
	return n > 0, err
}

func (r *postRepo) SlugExistsExcluding(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.D{{Key: "slug", Value: slug}}
	if oid, err := objectID(excludeID); err == nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}
	n, err := r.count(ctx, filter)
	return n > 0, err
}

func (r *postRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return r.count(ctx, bson.D{{Key: "category", Value: categoryID}})
}

func (r *postRepo) Insert(ctx context.Context, post *model.Post) error {
	doc := newPostDoc(post)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapWriteError(err, "inserting post")
	}
	post.ID = doc.ID.Hex()
	return nil
}

func (r *postRepo) Update(ctx context.Context, id string, patch model.PostPatch, updatedAt time.Time) (model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Post{}, store.ErrNotFound
	}

	var d postDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, postUpdate(patch, updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return model.Post{}, mapReadError(err, "updating post")
	}
	return d.toModel(), nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// counter applies update to one post and returns the named counter after the write.
func (r *postRepo) counter(ctx context.Context, id, field string, update any) (int, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, store.ErrNotFound
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: field, Value: 1}})

	var out bson.M
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&out)
	if err != nil {
		return 0, mapReadError(err, "updating "+field)
	}
	return toInt(out[field]), nil
}

func (r *postRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	return r.counter(ctx, id, "views", bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
}

func (r *postRepo) AdjustLikes(ctx context.Context, id string, delta int) (int, error) {
	return r.counter(ctx, id, "likes", clampedAdd("likes", delta))
}

// toInt converts the numeric BSON types a counter may hold.
func toInt(v any) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
