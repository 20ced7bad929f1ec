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

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	GetAll(ctx context.Context, categoryID string) ([]models.Video, error)
	Delete(ctx context.Context, id string) error
}

type videoRepository struct {
	collection *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) VideoRepository {
	return &videoRepository{collection: db.Collection("videos")}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	video.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var video models.Video
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *videoRepository) GetAll(ctx context.Context, categoryID string) ([]models.Video, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["categoryId"] = categoryID
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

func (r *videoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
