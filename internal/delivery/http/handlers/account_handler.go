package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/account"
	accountdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/account"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accounts  account.AccountUsecase
	referrals referral.ReferralUsecase
	services  []domain.Service
	now       func() time.Time
}

func NewAccountHandler(accounts account.AccountUsecase, referrals referral.ReferralUsecase, services []domain.Service) *AccountHandler {
	if services == nil {
		services = domain.DefaultServices
	}
	return &AccountHandler{
		accounts:  accounts,
		referrals: referrals,
		services:  services,
		now:       time.Now,
	}
}

func (h *AccountHandler) LoginGoogle(c *gin.Context) {
	var req request.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "idToken is required")
		return
	}

	out, err := h.accounts.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, response.LoginResponse{
		ID:         out.User.ID,
		Name:       out.User.Name,
		Email:      out.User.Email,
		Picture:    out.User.Picture,
		Role:       out.User.Role,
		IsVerified: out.User.IsVerified,
		Token:      out.Token,
	})
}

func (h *AccountHandler) Verify(c *gin.Context) {
	user, err := h.accounts.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "Verification failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and email are required")
		return
	}
	if claims, ok := middleware.ScopedClaims(c); ok &&
		!strings.EqualFold(strings.TrimSpace(req.Email), claims.Email) {
		c.JSON(http.StatusForbidden, response.ErrorResponse{Error: "cannot update another user's profile"})
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), &accountdto.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, response.UpdateProfileResponse{
		Message: "Profile updated successfully",
		Name:    user.Name,
		Email:   user.Email,
	})
}

func (h *AccountHandler) UserData(c *gin.Context) {
	userID := c.Query("userId")
	if claims, ok := middleware.ScopedClaims(c); ok {
		if userID == "" {
			userID = claims.UserID()
		}
		if userID != claims.UserID() {
			c.JSON(http.StatusForbidden, response.ErrorResponse{Error: "cannot read another user's data"})
			return
		}
	}

	data, err := h.referrals.UserData(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err, "Failed to load user data")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AccountHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, response.ServicesResponse{Services: h.services})
}
