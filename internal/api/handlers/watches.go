package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

type WatchHandler struct {
	watches *services.WatchService
}

func NewWatchHandler(watches *services.WatchService) *WatchHandler {
	return &WatchHandler{watches: watches}
}

func (h *WatchHandler) ListWatches(c *gin.Context) {
	watches, err := h.watches.ListActive(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, watches)
}

func (h *WatchHandler) CreateWatch(c *gin.Context) {
	var req models.CreateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	watch, err := h.watches.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, watch)
}

func (h *WatchHandler) DeleteWatch(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	if err := h.watches.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
