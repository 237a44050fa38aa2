package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/metrics"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
)

// GigHandler handles gig-related HTTP requests
type GigHandler struct {
	gigRepository      repositories.GigRepository
	userRepository     repositories.UserRepository
	savedGigRepository repositories.SavedGigRepository
	collector          *metrics.Collector
}

// NewGigHandler creates a new GigHandler
func NewGigHandler(
	gigRepo repositories.GigRepository,
	userRepo repositories.UserRepository,
	savedGigRepo repositories.SavedGigRepository,
	collector *metrics.Collector,
) *GigHandler {
	return &GigHandler{
		gigRepository:      gigRepo,
		userRepository:     userRepo,
		savedGigRepository: savedGigRepo,
		collector:          collector,
	}
}

// RegisterPublicGigRoutes registers the unauthenticated gig listings
func (h *GigHandler) RegisterPublicGigRoutes(g *echo.Group) {
	g.GET("/gigs", h.ListGigs)
	g.GET("/gigs/:id", h.GetGig)
}

// RegisterGigRoutes registers the authenticated gig routes
func (h *GigHandler) RegisterGigRoutes(g *echo.Group) {
	g.POST("/gigs", h.CreateGig)
	g.DELETE("/gigs/:id", h.DeleteGig)
}

// EnrichedGig is a gig with seller info and per-viewer flags
type EnrichedGig struct {
	models.Gig
	Seller  models.UserCompact `json:"seller"`
	IsSaved bool               `json:"is_saved"`
}

// CreateGig creates a new gig; only sellers may create gigs
func (h *GigHandler) CreateGig(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}
	if !claims.IsSeller {
		return echo.NewHTTPError(http.StatusForbidden, "Only sellers can create gigs")
	}

	var req models.CreateGigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	gig := &models.Gig{
		UserID:         userIDString(claims.UserID),
		Title:          req.Title,
		Desc:           req.Desc,
		Category:       req.Category,
		Price:          req.Price,
		Cover:          req.Cover,
		Images:         req.Images,
		ShortTitle:     req.ShortTitle,
		ShortDesc:      req.ShortDesc,
		DeliveryTime:   req.DeliveryTime,
		RevisionNumber: req.RevisionNumber,
		Features:       req.Features,
	}

	if err := h.gigRepository.CreateGig(c.Request().Context(), gig); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create gig")
	}
	h.collector.GigCreated()

	return c.JSON(http.StatusCreated, gig)
}

// GetGig returns a single gig with seller annotation
func (h *GigHandler) GetGig(c echo.Context) error {
	gig, err := h.gigRepository.GetGigByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Gig not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid gig ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gig")
	}

	enriched := h.enrich([]models.Gig{*gig}, getUserIDFromContext(c))
	return c.JSON(http.StatusOK, enriched[0])
}

// ListGigs returns gigs matching the query filters, newest first
func (h *GigHandler) ListGigs(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	minPrice, _ := strconv.Atoi(c.QueryParam("min"))
	maxPrice, _ := strconv.Atoi(c.QueryParam("max"))
	filter := models.GigFilter{
		UserID:   c.QueryParam("user_id"),
		Category: c.QueryParam("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Search:   c.QueryParam("search"),
	}

	skip := int64((page - 1) * limit)
	gigs, err := h.gigRepository.ListGigs(c.Request().Context(), filter, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gigs")
	}

	return c.JSON(http.StatusOK, h.enrich(gigs, getUserIDFromContext(c)))
}

// DeleteGig deletes a gig; only the owning seller may delete it
func (h *GigHandler) DeleteGig(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	gigID := c.Param("id")
	gig, err := h.gigRepository.GetGigByID(c.Request().Context(), gigID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Gig not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid gig ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gig")
	}

	if gig.UserID != userIDString(currentUserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own gigs")
	}

	if err := h.gigRepository.DeleteGig(c.Request().Context(), gigID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete gig")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Gig has been deleted"})
}

// enrich annotates gigs with seller display data (one batched user lookup)
// and, for a signed-in viewer, the saved flag.
func (h *GigHandler) enrich(gigs []models.Gig, currentUserID uint) []EnrichedGig {
	seen := make(map[string]bool)
	sellerIDs := make([]uint, 0, len(gigs))
	gigIDs := make([]string, len(gigs))
	for i, g := range gigs {
		gigIDs[i] = g.ID.Hex()
		if seen[g.UserID] {
			continue
		}
		seen[g.UserID] = true
		if id, err := strconv.ParseUint(g.UserID, 10, 32); err == nil {
			sellerIDs = append(sellerIDs, uint(id))
		}
	}

	userMap := make(map[string]models.UserCompact)
	if users, err := h.userRepository.GetUsersByIDs(sellerIDs); err == nil {
		for _, u := range users {
			userMap[userIDString(u.ID)] = u.ToCompact()
		}
	}

	savedMap := map[string]bool{}
	if currentUserID > 0 {
		savedMap, _ = h.savedGigRepository.GetSavedGigIDs(currentUserID, gigIDs)
	}

	enriched := make([]EnrichedGig, len(gigs))
	for i, g := range gigs {
		enriched[i] = EnrichedGig{
			Gig:     g,
			Seller:  userMap[g.UserID],
			IsSaved: savedMap[g.ID.Hex()],
		}
	}
	return enriched
}
