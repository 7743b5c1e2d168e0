package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

type CollectionHandler struct {
	collection  *services.CollectionService
	priceWorker *services.PriceWorker
}

func NewCollectionHandler(collection *services.CollectionService, priceWorker *services.PriceWorker) *CollectionHandler {
	return &CollectionHandler{
		collection:  collection,
		priceWorker: priceWorker,
	}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	entries, err := h.collection.List(c.Request.Context(), currentUser(c).ID, c.Query("set"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToCollection answers 201 for a new stack and 200 when the copies were
// merged into an existing one.
func (h *CollectionHandler) AddToCollection(c *gin.Context) {
	var req models.AddToCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.collection.Add(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Operation == "created" {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *CollectionHandler) UpdateCollectionItem(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.collection.Update(c.Request.Context(), currentUser(c).ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollectionHandler) DeleteCollectionItem(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	if err := h.collection.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// RefreshPrices queues every card the user holds for the next price batch
func (h *CollectionHandler) RefreshPrices(c *gin.Context) {
	cardIDs, err := h.collection.HeldCardIDs(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, id := range cardIDs {
		h.priceWorker.QueueRefresh(id)
	}
	c.JSON(http.StatusAccepted, gin.H{
		"queued":     len(cardIDs),
		"queue_size": h.priceWorker.GetQueueSize(),
	})
}

func entryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
