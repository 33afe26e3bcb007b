// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/techblog/internal/model"
	"github.com/olegiv/techblog/internal/store"
)

type userRepo struct {
	coll *mongo.Collection
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (r *userRepo) findOne(ctx context.Context, by string, filter bson.D) (model.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return model.User{}, mapReadError(err, "getting user by "+by)
	}
	return d.toModel(), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "id", userIDFilter(id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, "username", bson.D{{Key: "username", Value: username}})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "email", bson.D{{Key: "email", Value: email}})
}

func (r *userRepo) Insert(ctx context.Context, u *model.User) error {
	oid := primitive.NewObjectID()
	_, err := r.coll.InsertOne(ctx, userDoc{
		ObjectID:  oid,
		ID:        oid.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Avatar:    u.Avatar,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.UTC(),
	})
	if err != nil {
		return mapWriteError(err, "inserting user")
	}
	u.ID = oid.Hex()
	return nil
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.coll.UpdateOne(ctx, userIDFilter(id),
		bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: hash}}}})
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
