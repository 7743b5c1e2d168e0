package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

type PriceHandler struct {
	priceWorker *services.PriceWorker
}

func NewPriceHandler(priceWorker *services.PriceWorker) *PriceHandler {
	return &PriceHandler{
		priceWorker: priceWorker,
	}
}

// GetPriceStatus reports the worker's last run, next run and queue
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	status := h.priceWorker.GetStatus()
	c.JSON(http.StatusOK, status)
}

// RefreshCardPrice refreshes one card's price right away, or with
// ?queue=true puts it at the front of the worker's next batch.
func (h *PriceHandler) RefreshCardPrice(c *gin.Context) {
	cardID := c.Param("id")

	if cardID == "" {
		badRequest(c, "card id is required")
		return
	}

	if c.Query("queue") == "true" {
		position := h.priceWorker.QueueRefresh(cardID)
		c.JSON(http.StatusAccepted, gin.H{
			"card_id":        cardID,
			"queue_position": position,
		})
		return
	}

	card, err := h.priceWorker.UpdateCard(c.Request.Context(), cardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card": card,
	})
}
