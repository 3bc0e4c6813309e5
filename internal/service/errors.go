package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"errors"

	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrInvalidToken         = errors.New("token is invalid or has expired")
)

// translate maps repository errors onto the domain taxonomy. what names the
// entity for not-found and conflict messages; op names the failed step.
func translate(err error, what, op string) error {
	if err == nil {
		return nil
	}
	var domainErr *domain.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, ErrAuthenticationFailed), errors.Is(err, ErrInvalidToken):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return domain.NewNotFoundError(what)
	case errors.Is(err, repository.ErrConflict):
		return domain.NewConflictError("%s already exists", what)
	}
	log.WithError(err).WithField("op", op).Error("store failure")
	return domain.NewStoreError(err, op)
}
