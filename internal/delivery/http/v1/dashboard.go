package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

type statusCountView struct {
	statusView
	Count int `json:"count"`
}

type tagUsageView struct {
	tagView
	Count int `json:"count"`
}

type dashboardResponse struct {
	StatusCounts []statusCountView `json:"status_counts"`
	Total        int               `json:"total"`
	TopTags      []tagUsageView    `json:"top_tags"`
	Budget       decimal.Decimal   `json:"budget"`
	Spent        decimal.Decimal   `json:"spent"`
	Remaining    decimal.Decimal   `json:"remaining"`
	Upcoming     []taskView        `json:"upcoming"`
	Recent       []historyView     `json:"recent"`
}

func (h *handlerImpl) HandleDashboard(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	resp := dashboardResponse{
		StatusCounts: make([]statusCountView, len(models.TaskStatuses)),
		Total:        d.Total,
		TopTags:      make([]tagUsageView, len(d.TopTags)),
		Budget:       d.Budget,
		Spent:        d.Spent,
		Remaining:    d.Remaining,
		Upcoming:     newTaskViews(d.Upcoming),
		Recent:       h.newHistoryViews(d.Recent),
	}
	for i, s := range models.TaskStatuses {
		resp.StatusCounts[i] = statusCountView{
			statusView: statusView{Value: string(s), Label: s.Label()},
			Count:      d.StatusCounts[s],
		}
	}
	for i, u := range d.TopTags {
		resp.TopTags[i] = tagUsageView{
			tagView: tagView{ID: u.Tag.ID, Name: u.Tag.Name, Color: string(u.Tag.Color)},
			Count:   u.Count,
		}
	}
	c.JSON(http.StatusOK, resp)
}
