package server

import (
	"log/slog"

	"findlost/internal/auth"
	"findlost/internal/middleware"
	"findlost/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// AuthRequired rejects requests without a verifiable bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.authenticate(c)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or missing bearer token"))
		}
		s.setIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth verifies a bearer token when one is sent. A request without
// an Authorization header continues anonymously; a bad token is rejected.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		id, err := s.authenticate(c)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid bearer token"))
		}
		s.setIdentity(c, id)
		return c.Next()
	}
}

// authenticate verifies the bearer token and attaches the directory user
// registered under the verified email, if any.
func (s *Server) authenticate(c *fiber.Ctx) (*auth.Identity, error) {
	ctx := c.UserContext()

	token, err := auth.ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}

	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "bearer token rejected", slog.String("error", err.Error()))
		return nil, err
	}

	user, err := s.userService.GetUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
		id.UserID = user.ID
	case models.AsAppError(err).Code != models.CodeNotFound:
		middleware.Logger.ErrorContext(ctx, "failed to resolve directory user",
			slog.String("error", err.Error()))
	}
	return id, nil
}

func (s *Server) setIdentity(c *fiber.Ctx, id *auth.Identity) {
	c.Locals(identityLocal, id)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), id.SubjectID))
}

// identityFrom returns the verified identity of the request, or nil.
func identityFrom(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityLocal).(*auth.Identity)
	return id
}
