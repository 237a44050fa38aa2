package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/models"
)

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no valid identity.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// getClaimsFromContext returns the full claims, or nil when unauthenticated
func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// userIDString renders a marketplace user ID the way Mongo documents store it
func userIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
