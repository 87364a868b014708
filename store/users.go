// Package store wraps the MongoDB collections behind small, typed
// accessors so handlers never touch bson directly.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sehoonk/echo-blog/model"
)

var (
	// ErrUsernameTaken signals a duplicate-key rejection from the unique
	// username index. The index, not the handler pre-check, is the source
	// of truth for uniqueness.
	ErrUsernameTaken = errors.New("store: username already taken")
	// ErrInvalidID signals a structurally malformed object id, caught
	// before any query is issued.
	ErrInvalidID = errors.New("store: invalid object id")
)

// Users holds reference to the users collection and is the receiver of
// the credential-store operations.
type Users struct {
	Collection *mongo.Collection
}

// EnsureIndexes creates the unique index on username. Run once at startup.
func (s *Users) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByUsername looks up a user by exact username. Returns (nil, nil)
// when no such user exists.
func (s *Users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := s.Collection.FindOne(ctx, bson.M{"username": username}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID looks up a user by its hex object id. Returns (nil, nil) when
// absent and ErrInvalidID when the id is malformed.
func (s *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	user := &model.User{}
	err = s.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a user with an already-hashed password and returns the
// stored record. A duplicate username surfaces as ErrUsernameTaken.
func (s *Users) Create(ctx context.Context, username, hashedPassword string) (*model.User, error) {
	user := &model.User{
		ID:             primitive.NewObjectID(),
		Username:       username,
		HashedPassword: hashedPassword,
	}
	if _, err := s.Collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}
