package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/middleware"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	uc referral.ReferralUsecase
}

func NewReferralHandler(uc referral.ReferralUsecase) *ReferralHandler {
	return &ReferralHandler{uc: uc}
}

func (h *ReferralHandler) Submit(c *gin.Context) {
	var req request.SubmitReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "All fields are required")
		return
	}
	// with roles enforced a partner always submits as themselves
	if claims, ok := middleware.ScopedClaims(c); ok {
		req.UserID = claims.UserID()
	}

	created, err := h.uc.Submit(c.Request.Context(), &referraldto.SubmitReferralInput{
		ClientName:         req.ClientName,
		Mobile:             req.Mobile,
		ExpectedCommission: req.ExpectedCommission.String(),
		ReferrerID:         req.UserID,
		ReferrerName:       req.ReferrerName,
	})
	if err != nil {
		respondError(c, err, "Failed to submit referral")
		return
	}
	c.JSON(http.StatusOK, response.SubmitReferralResponse{
		Message:  "Referral submitted successfully",
		Referral: created,
	})
}

func (h *ReferralHandler) SetStatus(c *gin.Context) {
	var req request.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "referralId and status are required")
		return
	}

	result, err := h.uc.SetStatus(c.Request.Context(), &referraldto.SetStatusInput{
		ReferralID: req.ReferralID,
		Status:     req.Status,
		Confirmed:  req.Confirmed,
	})
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}
	c.JSON(http.StatusOK, response.SetStatusResponse{
		Message:  "Status updated",
		Changed:  result.Changed,
		Referral: result.Referral,
		Payout:   result.Payout,
	})
}

func (h *ReferralHandler) SetReminder(c *gin.Context) {
	var req request.SetReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "referralId is required")
		return
	}

	updated, err := h.uc.SetReminder(c.Request.Context(), &referraldto.SetReminderInput{
		ReferralID:   req.ReferralID,
		ReminderDate: req.ReminderDate,
		ReminderNote: req.ReminderNote,
	})
	if err != nil {
		respondError(c, err, "Failed to set reminder")
		return
	}
	c.JSON(http.StatusOK, response.SetReminderResponse{
		Message:  "Reminder updated",
		Referral: updated,
	})
}
