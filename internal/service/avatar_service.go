package service

import (
	"context"
	"log"

	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/repository"
	"github.com/dom/contacts-api/internal/storage"
)

type AvatarService struct {
	userRepo repository.UserRepository
	store    storage.AvatarStore
}

func NewAvatarService(userRepo repository.UserRepository, store storage.AvatarStore) *AvatarService {
	return &AvatarService{userRepo: userRepo, store: store}
}

// SetAvatar uploads the image and records the resulting URL on the user.
// Upload is best-effort: a storage failure leaves the avatar null and is
// reported to the caller, but the user record itself is never rolled back.
func (s *AvatarService) SetAvatar(ctx context.Context, user *domain.User, contentType string, data []byte) (*string, error) {
	url, err := s.store.Upload(ctx, contentType, data)
	if err != nil {
		log.Printf("ERROR [AvatarService] upload for user %d failed: %v", user.ID, err)
		return nil, err
	}

	if err := s.userRepo.SetAvatar(ctx, user.ID, &url); err != nil {
		return nil, err
	}

	return &url, nil
}
