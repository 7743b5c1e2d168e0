package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

type PortfolioHandler struct {
	portfolio *services.PortfolioService
	snapshots *services.SnapshotService
}

func NewPortfolioHandler(portfolio *services.PortfolioService, snapshots *services.SnapshotService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, snapshots: snapshots}
}

func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	summary, err := h.portfolio.GetSummary(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetValueHistory returns daily snapshots for ?period=week|month|3month|year|all
func (h *PortfolioHandler) GetValueHistory(c *gin.Context) {
	history, err := h.snapshots.GetHistory(c.Request.Context(), currentUser(c).ID, c.DefaultQuery("period", "month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// TakeSnapshot records today's snapshot now instead of waiting for the schedule
func (h *PortfolioHandler) TakeSnapshot(c *gin.Context) {
	snap, err := h.snapshots.TakeSnapshot(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
