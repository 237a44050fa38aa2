package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
)

// FollowHandler handles follow-graph HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follows/:id", h.Follow)
	g.DELETE("/follows/:id", h.Unfollow)
	g.GET("/follows/:id/followers", h.GetFollowers)
	g.GET("/follows/:id/following", h.GetFollowing)
	g.GET("/follows/:id/status", h.GetFollowStatus)
}

// Follow makes the current user follow the target user
func (h *FollowHandler) Follow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}

	follow := &models.Follow{FollowerID: currentUserID, FollowingID: targetID}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return c.JSON(http.StatusOK, echo.Map{"message": "Already following", "following": true})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Now following", "following": true})
}

// Unfollow removes the follow relationship
func (h *FollowHandler) Unfollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(currentUserID, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unfollow user")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Unfollowed", "following": false})
}

// GetFollowers returns the users following the given user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowers(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load followers")
	}

	return c.JSON(http.StatusOK, compactUsers(users))
}

// GetFollowing returns the users the given user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowing(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load following")
	}

	return c.JSON(http.StatusOK, compactUsers(users))
}

// GetFollowStatus reports counts and whether the current user follows the target
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	followers, err := h.followRepository.GetFollowersCount(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load follow counts")
	}
	following, err := h.followRepository.GetFollowingCount(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load follow counts")
	}

	isFollowing := false
	if currentUserID := getUserIDFromContext(c); currentUserID > 0 {
		isFollowing, _ = h.followRepository.IsFollowing(currentUserID, targetID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"followers":    followers,
		"following":    following,
		"is_following": isFollowing,
	})
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
