package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/metrics"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	userRepository  repositories.UserRepository
	collector       *metrics.Collector
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository, userRepo repositories.UserRepository, collector *metrics.Collector) *StoryHandler {
	return &StoryHandler{
		storyRepository: storyRepo,
		userRepository:  userRepo,
		collector:       collector,
	}
}

// RegisterPublicStoryRoutes registers the unauthenticated story listings
func (h *StoryHandler) RegisterPublicStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.GET("/stories/user/:userId", h.GetUserStories)
}

// RegisterStoryRoutes registers the authenticated story routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/view", h.ViewStory)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// CreateStory creates a new story for the authenticated user
func (h *StoryHandler) CreateStory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	duration := req.DurationHours
	if duration == 0 {
		duration = models.DefaultStoryDurationHours
	}

	// One timestamp for both fields so the lifetime is exactly the chosen
	// duration.
	now := time.Now()
	story := &models.Story{
		AuthorID:  userIDString(currentUserID),
		ImageURL:  req.ImageURL,
		Text:      req.Text,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(duration) * time.Hour),
	}

	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create story")
	}
	h.collector.StoryCreated()

	return c.JSON(http.StatusCreated, story)
}

// GetStories returns all active stories annotated with author display data
func (h *StoryHandler) GetStories(c echo.Context) error {
	stories, err := h.storyRepository.GetActiveStories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stories")
	}

	userMap, err := h.lookupAuthors(stories)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load story authors")
	}

	return c.JSON(http.StatusOK, annotateStories(stories, userMap))
}

// GetUserStories returns one user's active stories, or 404 if the user is unknown
func (h *StoryHandler) GetUserStories(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	// Unknown author is 404 even with zero stories; a known author with no
	// active stories gets an empty list.
	user, err := h.userRepository.GetUserByID(uint(userID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}

	stories, err := h.storyRepository.GetActiveStoriesByAuthor(c.Request().Context(), userIDString(user.ID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stories")
	}

	userMap := map[string]models.UserCompact{userIDString(user.ID): user.ToCompact()}
	return c.JSON(http.StatusOK, annotateStories(stories, userMap))
}

// ViewStory marks a story as viewed by the authenticated user. Viewing your
// own story or a story you already viewed is a success no-op.
func (h *StoryHandler) ViewStory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	storyID := c.Param("id")
	story, err := h.storyRepository.GetActiveStoryByID(c.Request().Context(), storyID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid story ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load story")
	}

	if story.AuthorID == userIDString(currentUserID) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Cannot mark your own story as viewed"})
	}

	// Atomic add-if-absent at the storage layer; repeats are no-ops. The
	// story may expire between the read above and this update, in which
	// case the filtered update reports not found.
	if err := h.storyRepository.AddViewer(c.Request().Context(), storyID, userIDString(currentUserID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark story as viewed")
	}
	h.collector.StoryViewed()

	return c.JSON(http.StatusOK, echo.Map{"message": "Story marked as viewed"})
}

// DeleteStory hard-deletes a story; only the author may delete it
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	storyID := c.Param("id")
	story, err := h.storyRepository.GetActiveStoryByID(c.Request().Context(), storyID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid story ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load story")
	}

	if story.AuthorID != userIDString(currentUserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own stories")
	}

	if err := h.storyRepository.DeleteStory(c.Request().Context(), storyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete story")
	}
	h.collector.StoryDeleted()

	return c.JSON(http.StatusOK, echo.Map{"message": "Story has been deleted"})
}

// lookupAuthors resolves the distinct author IDs of a result set with a
// single batched user query.
func (h *StoryHandler) lookupAuthors(stories []models.Story) (map[string]models.UserCompact, error) {
	seen := make(map[string]bool)
	ids := make([]uint, 0, len(stories))
	for _, s := range stories {
		if seen[s.AuthorID] {
			continue
		}
		seen[s.AuthorID] = true
		if id, err := strconv.ParseUint(s.AuthorID, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}

	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}

	userMap := make(map[string]models.UserCompact, len(users))
	for _, u := range users {
		userMap[userIDString(u.ID)] = u.ToCompact()
	}
	return userMap, nil
}

func annotateStories(stories []models.Story, userMap map[string]models.UserCompact) []models.StoryResponse {
	out := make([]models.StoryResponse, len(stories))
	for i, s := range stories {
		resp := models.StoryResponse{
			ID:        s.ID.Hex(),
			AuthorID:  s.AuthorID,
			ImageURL:  s.ImageURL,
			Text:      s.Text,
			ViewerIDs: s.ViewerIDs,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		}
		if resp.ViewerIDs == nil {
			resp.ViewerIDs = []string{}
		}
		if author, ok := userMap[s.AuthorID]; ok {
			resp.Username = author.Username
			resp.UserImg = author.Img
		} else {
			resp.Username = "Unknown User"
		}
		out[i] = resp
	}
	return out
}
