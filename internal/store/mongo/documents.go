// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/olegiv/techblog/internal/model"
)

type postDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Excerpt     string             `bson:"excerpt"`
	Content     string             `bson:"content"`
	Author      string             `bson:"author"`
	PublishedAt time.Time          `bson:"publishedAt"`
	Image       string             `bson:"image"`
	Category    string             `bson:"category"`
	Tags        []string           `bson:"tags"`
	Views       int                `bson:"views"`
	Likes       int                `bson:"likes"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newPostDoc(p *model.Post) postDoc {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postDoc{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Author:      p.Author,
		PublishedAt: p.PublishedAt.UTC(),
		Image:       p.Image,
		Category:    p.Category,
		Tags:        tags,
		Views:       p.Views,
		Likes:       p.Likes,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (d postDoc) toModel() model.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Excerpt:     d.Excerpt,
		Content:     d.Content,
		Author:      d.Author,
		PublishedAt: d.PublishedAt.UTC(),
		Image:       d.Image,
		Category:    d.Category,
		Tags:        tags,
		Views:       d.Views,
		Likes:       d.Likes,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// categoryDoc keys categories by their slug in "id"; "_id" is left to the server.
type categoryDoc struct {
	ID          string    `bson:"id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d categoryDoc) toModel() model.Category {
	return model.Category{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type userDoc struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	ID        string             `bson:"id"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Avatar    string             `bson:"avatar"`
	IsAdmin   bool               `bson:"isAdmin"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d userDoc) toModel() model.User {
	id := d.ID
	if id == "" {
		id = d.ObjectID.Hex()
	}
	return model.User{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Avatar:       d.Avatar,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type tagDoc struct {
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}
