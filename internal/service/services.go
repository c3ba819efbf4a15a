package service

import (
	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/notify"
	"github.com/dom/contacts-api/internal/repository"
	"github.com/dom/contacts-api/internal/storage"
)

type Services struct {
	Auth    *AuthService
	Contact *ContactService
	Avatar  *AvatarService
}

func NewServices(repos *repository.Repositories, users cache.UserCache, notifier notify.VerificationNotifier, avatars storage.AvatarStore, cfg *config.Config) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, users, notifier, cfg),
		Contact: NewContactService(repos.Contact),
		Avatar:  NewAvatarService(repos.User, avatars),
	}
}
