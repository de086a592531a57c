package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotel-recommender/models"
)

var (
	ErrUserExists   = errors.New("username or email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore persists registered users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type MongoUserStore struct {
	users *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: db.Collection("users")}
}

// Create inserts user, filling ID and CreatedAt. A username or email that is
// already taken yields ErrUserExists.
func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	filter := bson.M{"$or": []bson.M{
		{"username": user.Username},
		{"email": user.Email},
	}}
	count, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		// the unique indexes catch a concurrent registration
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
