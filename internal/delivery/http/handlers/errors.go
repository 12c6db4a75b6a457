package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps the domain taxonomy to HTTP. Store and unknown failures get the
// generic fallback so internals never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAuth):
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Google authentication failed"})
	case errors.Is(err, domain.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: fallback + ", please try again"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: msg})
}
