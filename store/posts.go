package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sehoonk/echo-blog/model"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

// ListFilter narrows a listing to one author and/or one tag. Empty
// fields match everything.
type ListFilter struct {
	Username string
	Tag      string
}

// Query builds the Mongo filter document for the listing.
func (f ListFilter) Query() bson.M {
	query := bson.M{}
	if f.Username != "" {
		query["user.username"] = f.Username
	}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}
	return query
}

// PostPatch carries the optional fields of a partial update. Nil fields
// are left untouched.
type PostPatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// Posts holds reference to the posts collection and is the receiver of
// the post-store operations.
type Posts struct {
	Collection *mongo.Collection
}

// Create inserts a new post authored by the given user.
func (s *Posts) Create(ctx context.Context, title, body string, tags []string, author model.Author) (*model.Post, error) {
	now := time.Now().UTC()
	post := &model.Post{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      body,
		Tags:      tags,
		User:      author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.Collection.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID fetches a post by hex id. ErrInvalidID is returned before any
// query when the id is malformed; (nil, nil) means no such post.
func (s *Posts) FindByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	post := &model.Post{}
	err = s.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns one page of posts, newest first, plus the total number of
// posts matching the filter. page must be >= 1.
func (s *Posts) List(ctx context.Context, filter ListFilter, page int) ([]model.Post, int64, error) {
	query := filter.Query()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(PageSize).
		SetSkip(int64(page-1) * PageSize)

	cursor, err := s.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	posts := []model.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}

	total, err := s.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update applies the non-nil fields of the patch and returns the post as
// stored after the update. (nil, nil) means the id matched nothing.
func (s *Posts) Update(ctx context.Context, id string, patch PostPatch) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Body != nil {
		set["body"] = *patch.Body
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	post := &model.Post{}
	err = s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Remove deletes a post by id. Deleting a missing post is not an error.
func (s *Posts) Remove(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = s.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
