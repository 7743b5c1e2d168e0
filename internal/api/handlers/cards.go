package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

type CardHandler struct {
	cards *services.CardService
	now   func() time.Time
}

func NewCardHandler(cards *services.CardService) *CardHandler {
	return &CardHandler{cards: cards, now: time.Now}
}

func (h *CardHandler) SearchCards(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "query parameter 'q' is required")
		return
	}

	result, err := h.cards.SearchCards(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.cards.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetPriceHistory returns the card's recorded daily prices
func (h *CardHandler) GetPriceHistory(c *gin.Context) {
	history, err := h.cards.GetPriceHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *CardHandler) RecordLiquidity(c *gin.Context) {
	var req models.RecordLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	snap, err := h.cards.RecordLiquidity(c.Request.Context(), c.Param("id"), req, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}
