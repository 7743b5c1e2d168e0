package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

const (
	// UserIDHeader selects the acting user; without it the default user acts
	UserIDHeader = "X-User-ID"

	RequestIDKey = "request_id"
	userKey      = "user"
)

type UserHandler struct {
	users         *services.UserService
	defaultUserID uint
}

func NewUserHandler(users *services.UserService, defaultUserID uint) *UserHandler {
	return &UserHandler{users: users, defaultUserID: defaultUserID}
}

// ResolveUser loads the acting user for every request under it
func (h *UserHandler) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := h.defaultUserID
		if raw := c.GetHeader(UserIDHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + UserIDHeader + " header"})
				return
			}
			userID = uint(id)
		}

		user, err := h.users.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetCurrentUser returns whoever the request resolved to
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
