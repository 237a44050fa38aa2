package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviewRepository repositories.ReviewRepository
	gigRepository    repositories.GigRepository
	userRepository   repositories.UserRepository
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewRepo repositories.ReviewRepository, gigRepo repositories.GigRepository, userRepo repositories.UserRepository) *ReviewHandler {
	return &ReviewHandler{
		reviewRepository: reviewRepo,
		gigRepository:    gigRepo,
		userRepository:   userRepo,
	}
}

// RegisterPublicReviewRoutes registers the unauthenticated review listing
func (h *ReviewHandler) RegisterPublicReviewRoutes(g *echo.Group) {
	g.GET("/reviews/:gigId", h.GetReviews)
}

// RegisterReviewRoutes registers the authenticated review routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group) {
	g.POST("/reviews", h.CreateReview)
	g.DELETE("/reviews/:id", h.DeleteReview)
}

// EnrichedReview is a review with the reviewer's display data
type EnrichedReview struct {
	models.Review
	Reviewer models.UserCompact `json:"reviewer"`
}

// CreateReview creates a review and bumps the gig's star counters. Sellers
// cannot review their own gigs; one review per user per gig.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	gig, err := h.gigRepository.GetGigByID(c.Request().Context(), req.GigID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Gig not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid gig ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gig")
	}

	if gig.UserID == userIDString(currentUserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot review your own gig")
	}

	review := &models.Review{
		GigID:  req.GigID,
		UserID: currentUserID,
		Star:   req.Star,
		Desc:   req.Desc,
	}

	if err := h.reviewRepository.CreateReview(review); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "You have already reviewed this gig")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create review")
	}

	if err := h.gigRepository.UpdateStars(c.Request().Context(), req.GigID, req.Star, 1); err != nil {
		c.Logger().Errorf("failed to update gig star counters: %v", err)
	}

	return c.JSON(http.StatusCreated, review)
}

// GetReviews returns a gig's reviews annotated with reviewer display data
func (h *ReviewHandler) GetReviews(c echo.Context) error {
	reviews, err := h.reviewRepository.GetReviewsByGigID(c.Param("gigId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load reviews")
	}

	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	userMap := make(map[uint]models.UserCompact)
	if users, err := h.userRepository.GetUsersByIDs(ids); err == nil {
		for _, u := range users {
			userMap[u.ID] = u.ToCompact()
		}
	}

	enriched := make([]EnrichedReview, len(reviews))
	for i, r := range reviews {
		enriched[i] = EnrichedReview{Review: r, Reviewer: userMap[r.UserID]}
	}
	return c.JSON(http.StatusOK, enriched)
}

// DeleteReview deletes the current user's review and reverses the counters
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	review, err := h.reviewRepository.GetReviewByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Review not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load review")
	}

	if review.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own reviews")
	}

	if err := h.reviewRepository.DeleteReview(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete review")
	}

	if err := h.gigRepository.UpdateStars(c.Request().Context(), review.GigID, -review.Star, -1); err != nil {
		c.Logger().Errorf("failed to update gig star counters: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Review has been deleted"})
}
