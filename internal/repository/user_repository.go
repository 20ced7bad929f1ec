package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyInState is returned by SetEntitlement when the flag already
	// holds the requested value. Losing side of a double-click lands here.
	ErrAlreadyInState = errors.New("entitlement already in requested state")
	ErrDuplicatePhone = errors.New("phone already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	SetEntitlement(ctx context.Context, id, flag string, value bool) (*models.User, error)
	SetOTP(ctx context.Context, phone, otp string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, phone, passwordHash string) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.VIP == nil {
		user.VIP = map[string]bool{}
	}

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": models.NormalizePhone(phone)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetEntitlement flips one flag with a conditional single-document update.
// The filter requires the flag to differ from the target, so concurrent
// clicks on the same key resolve to one write and one ErrAlreadyInState.
func (r *userRepository) SetEntitlement(ctx context.Context, id, flag string, value bool) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	field := "vip." + flag
	filter := bson.M{"_id": oid, field: bson.M{"$ne": value}}
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to set entitlement: %w", err)
	}

	// No match: either the user is unknown or the flag is already there.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrAlreadyInState
}

// SetOTP stores the code and its expiry together.
func (r *userRepository) SetOTP(ctx context.Context, phone, otp string, expiresAt time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"phone": models.NormalizePhone(phone)},
		bson.M{"$set": bson.M{"otp": otp, "otpExpiresAt": expiresAt, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword swaps the hash and clears the OTP pair in one update.
func (r *userRepository) ResetPassword(ctx context.Context, phone, passwordHash string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"phone": models.NormalizePhone(phone)},
		bson.M{
			"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
			"$unset": bson.M{"otp": "", "otpExpiresAt": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
