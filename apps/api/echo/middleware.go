package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// canAccessInstitution reports whether the authenticated user may act on the
// given institution: admins always can, institute users only on their own.
func canAccessInstitution(ctx echo.Context, institutionID string) bool {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return false
	}
	return claims.IsAdmin || claims.InstitutionID == institutionID
}
