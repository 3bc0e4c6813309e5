package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// writeError maps a service error onto its HTTP status and aborts.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAuthenticationFailed) || errors.Is(err, service.ErrInvalidToken) {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		abortWithError(c, http.StatusBadRequest, err.Error())
	case domain.KindConflict:
		abortWithError(c, http.StatusConflict, err.Error())
	case domain.KindNotFound:
		abortWithError(c, http.StatusNotFound, err.Error())
	case domain.KindAuthorization:
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("internal error")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
}

// objectIDParam parses a path parameter, aborting with 400 when malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, domain.NewValidationError("invalid id %q", h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
