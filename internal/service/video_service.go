package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"

	"go.uber.org/zap"
)

// Upload carries one multipart file on its way to the blob store.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type VideoService interface {
	CreateVideo(ctx context.Context, video *models.Video, file, cover Upload) (*models.Video, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context, categoryID string) ([]models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	CanWatch(user *models.User, video *models.Video) bool
}

type videoService struct {
	videoRepo repository.VideoRepository
	store     BlobStore
	log       *zap.Logger
}

func NewVideoService(videoRepo repository.VideoRepository, store BlobStore, log *zap.Logger) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		store:     store,
		log:       log,
	}
}

// CreateVideo pushes both blobs to the store, then persists the metadata.
// An orphaned blob from a failed metadata write is cleaned up best-effort.
func (s *videoService) CreateVideo(ctx context.Context, video *models.Video, file, cover Upload) (*models.Video, error) {
	videoKey, videoURL, err := s.store.Put(ctx, "videos", file.Filename, file.Body, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video file: %w", err)
	}

	imageKey, imageURL, err := s.store.Put(ctx, "images", cover.Filename, cover.Body, cover.ContentType)
	if err != nil {
		s.cleanupBlob(ctx, videoKey)
		return nil, fmt.Errorf("failed to upload cover image: %w", err)
	}

	video.VideoKey = videoKey
	video.VideoURL = videoURL
	video.ImageKey = imageKey
	video.ImageURL = imageURL

	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.cleanupBlob(ctx, videoKey)
		s.cleanupBlob(ctx, imageKey)
		return nil, err
	}
	return video, nil
}

func (s *videoService) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	return s.videoRepo.GetByID(ctx, id)
}

func (s *videoService) ListVideos(ctx context.Context, categoryID string) ([]models.Video, error) {
	return s.videoRepo.GetAll(ctx, categoryID)
}

// DeleteVideo removes the metadata first, then the blobs. Blob deletion is
// best-effort: leftover files are invisible without the metadata record.
func (s *videoService) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cleanupBlob(ctx, video.VideoKey)
	s.cleanupBlob(ctx, video.ImageKey)
	return nil
}

// CanWatch implements the paywall: free videos are open to everyone, paid
// videos require the (categoryId, part) flag. A paid video whose pair is
// outside the catalog is never watchable.
func (s *videoService) CanWatch(user *models.User, video *models.Video) bool {
	if !video.IsPaid {
		return true
	}
	if user == nil {
		return false
	}

	flag, err := entitlement.FlagName(video.CategoryID, video.Part)
	if err != nil {
		return false
	}
	return user.HasEntitlement(flag)
}

func (s *videoService) cleanupBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete blob", zap.String("key", key), zap.Error(err))
	}
}
