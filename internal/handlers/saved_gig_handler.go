package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
)

// SavedGigHandler handles saved gig HTTP requests
type SavedGigHandler struct {
	savedGigRepository repositories.SavedGigRepository
	gigRepository      repositories.GigRepository
}

// NewSavedGigHandler creates a new SavedGigHandler
func NewSavedGigHandler(savedGigRepo repositories.SavedGigRepository, gigRepo repositories.GigRepository) *SavedGigHandler {
	return &SavedGigHandler{
		savedGigRepository: savedGigRepo,
		gigRepository:      gigRepo,
	}
}

// RegisterSavedGigRoutes registers saved gig routes
func (h *SavedGigHandler) RegisterSavedGigRoutes(g *echo.Group) {
	g.PUT("/saved-gigs/toggle/:id", h.ToggleSaveGig)
	g.GET("/saved-gigs", h.GetSavedGigs)
	g.GET("/saved-gigs/check/:id", h.CheckSavedGig)
}

// ToggleSaveGig saves the gig if unsaved, unsaves it otherwise. A duplicate
// insert racing another toggle is reported as already saved, not an error.
func (h *SavedGigHandler) ToggleSaveGig(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	gigID := c.Param("id")
	if _, err := h.gigRepository.GetGigByID(c.Request().Context(), gigID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Gig not found")
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid gig ID")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gig")
	}

	isSaved, err := h.savedGigRepository.IsGigSaved(currentUserID, gigID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check saved gig")
	}

	if isSaved {
		if err := h.savedGigRepository.UnsaveGig(currentUserID, gigID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unsave gig")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":  "Gig has been unsaved!",
			"is_saved": false,
			"gig_id":   gigID,
		})
	}

	savedGig := &models.SavedGig{UserID: currentUserID, GigID: gigID}
	if err := h.savedGigRepository.SaveGig(savedGig); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return c.JSON(http.StatusOK, echo.Map{
				"message":  "Gig is already saved",
				"is_saved": true,
				"gig_id":   gigID,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save gig")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Gig has been saved!",
		"is_saved": true,
		"gig_id":   gigID,
	})
}

// GetSavedGigs returns the full gig records the current user has saved
func (h *SavedGigHandler) GetSavedGigs(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in")
	}

	saved, err := h.savedGigRepository.GetSavedGigsByUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load saved gigs")
	}

	gigIDs := make([]string, len(saved))
	for i, s := range saved {
		gigIDs[i] = s.GigID
	}

	gigs, err := h.gigRepository.GetGigsByIDs(c.Request().Context(), gigIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gigs")
	}

	return c.JSON(http.StatusOK, gigs)
}

// CheckSavedGig reports whether the current user has saved the gig
func (h *SavedGigHandler) CheckSavedGig(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return c.JSON(http.StatusOK, echo.Map{"is_saved": false})
	}

	isSaved, err := h.savedGigRepository.IsGigSaved(currentUserID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check saved gig")
	}

	return c.JSON(http.StatusOK, echo.Map{"is_saved": isSaved})
}
