package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/export"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	uc  referral.ReferralUsecase
	now func() time.Time
}

func NewAdminHandler(uc referral.ReferralUsecase) *AdminHandler {
	return &AdminHandler{uc: uc, now: time.Now}
}

func (h *AdminHandler) AdminData(c *gin.Context) {
	data, err := h.uc.AdminData(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load admin data")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AdminHandler) ListReferrals(c *gin.Context) {
	referrals, err := h.list(c)
	if err != nil {
		respondError(c, err, "Failed to load referrals")
		return
	}
	c.JSON(http.StatusOK, response.ReferralsResponse{Referrals: referrals})
}

func (h *AdminHandler) list(c *gin.Context) ([]*domain.Referral, error) {
	return h.uc.ListReferrals(c.Request.Context(), &referraldto.ListReferralsInput{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		ReferrerID: c.Query("referrerId"),
	})
}

// DueReminders claims every reminder due now; each is returned exactly once.
func (h *AdminHandler) DueReminders(c *gin.Context) {
	due, err := h.uc.CheckDueReminders(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err, "Failed to check reminders")
		return
	}
	c.JSON(http.StatusOK, response.ReferralsResponse{Referrals: due})
}

func (h *AdminHandler) ExportCSV(c *gin.Context) {
	referrals, err := h.list(c)
	if err != nil {
		respondError(c, err, "Failed to export referrals")
		return
	}
	body, err := export.CSV(referrals)
	if err != nil {
		respondError(c, err, "Failed to export referrals")
		return
	}
	h.attachment(c, "text/csv; charset=utf-8", "csv", body)
}

func (h *AdminHandler) ExportXLSX(c *gin.Context) {
	referrals, err := h.list(c)
	if err != nil {
		respondError(c, err, "Failed to export referrals")
		return
	}
	body, err := export.XLSX(referrals)
	if err != nil {
		respondError(c, err, "Failed to export referrals")
		return
	}
	h.attachment(c, xlsxContentType, "xlsx", body)
}

func (h *AdminHandler) attachment(c *gin.Context, contentType, ext string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(h.now(), ext)))
	c.Data(http.StatusOK, contentType, body)
}
