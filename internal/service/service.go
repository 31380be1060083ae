package service

import (
	"github.com/carson-networks/property-server/internal/config"
	"github.com/carson-networks/property-server/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Banking *BankingService
}

// NewService creates a new Service with the given storage and action processor.
func NewService(store *storage.Storage, op actionProcessor, env *config.Config) *Service {
	return &Service{
		Banking: NewBankingService(store.Reader, op, env),
	}
}
