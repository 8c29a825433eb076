package videos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"videocoach-backend/internal/shared/storage/object"
)

// Service contains business logic for videos.
type Service struct {
	Store         object.ObjectStore
	Repo          VideosRepo
	StoreProvider string
}

var allowedMimePrefixes = []string{"video/", "application/octet-stream"}

// Upload saves the file to object storage and records the video.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Video, error) {
	if fileName == "" {
		return Video{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Video{}, fmt.Errorf("object store save: %w", err)
	}
	if !mimeAllowed(mimeType) {
		return Video{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, mimeType)
	}

	v := Video{
		ID:              uuid.NewString(),
		UserID:          userId,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StoreProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, v); err != nil {
		return Video{}, err
	}

	return v, nil
}

// Get returns a video owned by the user.
func (s *Service) Get(ctx context.Context, userId, videoID string) (Video, error) {
	if userId == "" || videoID == "" {
		return Video{}, errors.New("user id and video id required")
	}
	return s.Repo.GetByID(ctx, userId, videoID)
}

// List returns the user's videos, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Video, error) {
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// ResolveBytes loads the full video content from object storage for analysis.
func (s *Service) ResolveBytes(ctx context.Context, userId, videoID string) ([]byte, string, string, error) {
	v, err := s.Repo.GetByID(ctx, userId, videoID)
	if err != nil {
		return nil, "", "", err
	}
	rc, err := s.Store.Open(ctx, v.StorageKey)
	if err != nil {
		return nil, "", "", fmt.Errorf("object store open: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", "", fmt.Errorf("read video bytes: %w", err)
	}
	return data, v.FileName, v.MimeType, nil
}

func mimeAllowed(mimeType string) bool {
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
