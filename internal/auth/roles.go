package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// RequireUser ensures a requester is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeUser {
			return fiber.NewError(http.StatusForbidden, "end-user required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures an administrator is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeAdmin || principal.Admin == nil {
			return fiber.NewError(http.StatusForbidden, "administrator required")
		}
		return c.Next()
	}
}

// RequireAnySubject ensures caller is authenticated (user or admin).
func RequireAnySubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
