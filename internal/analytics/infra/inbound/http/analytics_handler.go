package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/tasksense/internal/analytics/domain"
	"github.com/davicafu/tasksense/pkg/utils"
)

const maxDays = 90

type AnalyticsHandler struct {
	reporter domain.Reporter
	now      func() time.Time
}

func NewAnalyticsHandler(reporter domain.Reporter) *AnalyticsHandler {
	return &AnalyticsHandler{reporter: reporter, now: time.Now}
}

func RegisterAnalyticsRoutes(r gin.IRouter, handler *AnalyticsHandler) {
	r.GET("/analytics/daily", handler.DailyCounts)
}

type dailyCountResponse struct {
	Day   string `json:"day"`
	Kind  string `json:"kind"`
	Count uint64 `json:"count"`
}

// DailyCounts endpoint GET /analytics/daily?days=7, días UTC completos hasta hoy.
func (h *AnalyticsHandler) DailyCounts(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 || days > maxDays {
		utils.SendBadRequest(c, "days must be between 1 and 90")
		return
	}

	end := h.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	counts, err := h.reporter.DailyCounts(c.Request.Context(), start, end)
	if err != nil {
		utils.SendInternalServerError(c, "analytics unavailable")
		return
	}

	resp := make([]dailyCountResponse, 0, len(counts))
	for _, dc := range counts {
		resp = append(resp, dailyCountResponse{
			Day:   dc.Day.Format("2006-01-02"),
			Kind:  dc.Kind,
			Count: dc.Count,
		})
	}
	utils.SendSuccess(c, http.StatusOK, resp)
}
