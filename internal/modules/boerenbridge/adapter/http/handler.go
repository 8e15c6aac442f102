// Package http exposes the registry and leaderboard REST surface.
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/usecase"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
	"github.com/jannikanker/OhHellCardGame/pkg/service"
)

// Handler handles HTTP requests for the boerenbridge module
type Handler struct {
	registryUC *usecase.RegistryUseCase
	gameUC     *usecase.GameUseCase
	userSvc    service.UserService
}

// NewHandler creates a new HTTP handler
func NewHandler(registryUC *usecase.RegistryUseCase, gameUC *usecase.GameUseCase, userSvc service.UserService) *Handler {
	return &Handler{
		registryUC: registryUC,
		gameUC:     gameUC,
		userSvc:    userSvc,
	}
}

// RegisterRoutes registers all boerenbridge routes to the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	registries := router.Group("/registries", h.authenticate)
	registries.POST("", h.CreateRegistry)
	registries.GET("", h.ListRegistries)
	registries.PUT("/:id/players", h.SavePlayer)
	registries.POST("/:id/shuffle", h.ShufflePlayers)
	registries.POST("/:id/game", h.NewGame)
	registries.DELETE("/:id/game", h.RemoveGame)
	registries.DELETE("/:id", h.DeleteRegistry)

	router.GET("/games", h.authenticate, h.LiveGames)
	router.GET("/games/:id/state", h.authenticate, h.RawState)
	router.PUT("/games/:id/state", h.authenticate, h.OverwriteState)
	router.GET("/scores/top", h.TopScores)
}

// authenticate resolves the bearer token into the acting player.
func (h *Handler) authenticate(c *gin.Context) {
	token := c.GetHeader("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, username, email, _, err := h.userSvc.ValidateToken(c.Request.Context(), token)
	if err != nil {
		logger.Warn(c.Request.Context()).Err(err).Msg("Token validation failed")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set("actor", usecase.Actor{UserID: userID, Email: email, Name: username})
	c.Next()
}

func getActor(c *gin.Context) usecase.Actor {
	actor, _ := c.Get("actor")
	a, _ := actor.(usecase.Actor)
	return a
}

// DTOs
type createRegistryRequest struct {
	Name          string `json:"name" binding:"required"`
	CompetitionID string `json:"competition_id"`
	NrPlayers     int    `json:"nr_players" binding:"required"`
}

type savePlayerRequest struct {
	Seat  int    `json:"seat"`
	Email string `json:"email" binding:"required,email"`
}

// CreateRegistry creates a roster with empty seats
func (h *Handler) CreateRegistry(c *gin.Context) {
	var req createRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.registryUC.CreateRegistry(c.Request.Context(), getActor(c), req.Name, req.CompetitionID, req.NrPlayers)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reg)
}

// ListRegistries lists the rosters visible to the caller
func (h *Handler) ListRegistries(c *gin.Context) {
	regs, err := h.registryUC.ListRegistries(c.Request.Context(), getActor(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, regs)
}

// SavePlayer binds an email to a seat
func (h *Handler) SavePlayer(c *gin.Context) {
	var req savePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.registryUC.SavePlayer(c.Request.Context(), getActor(c), c.Param("id"), req.Seat, req.Email)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reg)
}

// ShufflePlayers randomizes the seating
func (h *Handler) ShufflePlayers(c *gin.Context) {
	reg, err := h.registryUC.ShufflePlayers(c.Request.Context(), getActor(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reg)
}

// NewGame creates a live game from the roster
func (h *Handler) NewGame(c *gin.Context) {
	game, err := h.registryUC.NewGame(c.Request.Context(), getActor(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game.Redacted())
}

// RemoveGame deletes the roster's live game
func (h *Handler) RemoveGame(c *gin.Context) {
	if err := h.registryUC.RemoveGame(c.Request.Context(), getActor(c), c.Param("id")); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteRegistry deletes a roster and its live game
func (h *Handler) DeleteRegistry(c *gin.Context) {
	if err := h.registryUC.DeleteRegistry(c.Request.Context(), getActor(c), c.Param("id")); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LiveGames lists the IDs of games currently in the live store
func (h *Handler) LiveGames(c *gin.Context) {
	ids, err := h.gameUC.LiveGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ids)
}

// RawState returns the unredacted game state, controller only
func (h *Handler) RawState(c *gin.Context) {
	game, err := h.gameUC.RawState(c.Request.Context(), c.Param("id"), getActor(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

// OverwriteState replaces the stored game state, controller only
func (h *Handler) OverwriteState(c *gin.Context) {
	var state domain.Game
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameUC.OverwriteState(c.Request.Context(), c.Param("id"), getActor(c), &state)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

// TopScores returns the all-time leaderboard
func (h *Handler) TopScores(c *gin.Context) {
	scores, err := h.gameUC.TopScores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scores)
}
