package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

const subjectKey = "auth_subject"

// Middleware validates bearer tokens on protected routes. Identities are not
// persisted, so the token subject is all the request carries.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewInvalidCredential()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewInvalidCredential()
	}

	subject, err := m.tokens.Validate(parts[1])
	if err != nil {
		return apperrors.NewInvalidCredential()
	}

	c.Locals(subjectKey, subject)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(subjectKey)
	if val == nil {
		return "", false
	}
	subject, ok := val.(string)
	return subject, ok && subject != ""
}
