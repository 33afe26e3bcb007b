// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/olegiv/techblog/internal/model"
)

// postFilter builds the find filter for a listing. The search term is matched
// literally and case-insensitively against title and excerpt.
func postFilter(f model.PostFilter) bson.D {
	filter := bson.D{}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if term := f.SearchTerm(); term != "" {
		pattern := bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(term)},
			{Key: "$options", Value: "i"},
		}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "excerpt", Value: pattern}},
		}})
	}
	return filter
}

// userIDFilter matches a user by its "id" field. Documents written without
// one are addressed by the hex of their _id, so a hex id also matches _id.
func userIDFilter(id string) bson.D {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.D{{Key: "id", Value: id}}
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "_id", Value: oid}},
	}}}
}

// postSort returns the sort document. _id breaks ties in insertion order.
func postSort(s model.PostSort) (bson.D, error) {
	switch s {
	case model.SortLatest, "":
		return bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: 1}}, nil
	case model.SortPopular:
		return bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}, nil
	default:
		return nil, fmt.Errorf("unsupported sort %q", s)
	}
}

// postUpdate builds a $set document holding only the fields present in patch.
func postUpdate(patch model.PostPatch, updatedAt time.Time) bson.D {
	set := bson.D{}
	add := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Slug != nil {
		add("slug", *patch.Slug)
	}
	if patch.Excerpt != nil {
		add("excerpt", *patch.Excerpt)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Author != nil {
		add("author", *patch.Author)
	}
	if patch.PublishedAt != nil {
		add("publishedAt", patch.PublishedAt.UTC())
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		add("tags", tags)
	}
	if patch.Views != nil {
		add("views", *patch.Views)
	}
	if patch.Likes != nil {
		add("likes", *patch.Likes)
	}
	add("updatedAt", updatedAt.UTC())

	return bson.D{{Key: "$set", Value: set}}
}

func categoryUpdate(patch model.CategoryPatch, updatedAt time.Time) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: updatedAt.UTC()})
	return bson.D{{Key: "$set", Value: set}}
}

// clampedAdd is an update pipeline that adds delta to field without going below zero.
// A missing field counts as zero.
func clampedAdd(field string, delta int) mongo.Pipeline {
	sum := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}},
		delta,
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$max", Value: bson.A{sum, 0}}}}}}},
	}
}
