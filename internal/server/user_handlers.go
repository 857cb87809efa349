package server

import (
	"findlost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /users
// @Summary List users or look one up by email
// @Tags users
// @Produce json
// @Param email query string false "User email"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if email := c.Query("email"); email != "" {
		user, err := s.userService.GetUserByEmail(ctx, email)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	}

	users, err := s.userService.ListUsers(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// UpsertUser handles POST /users
// @Summary Record a sign-in
// @Description Creates the user on first sign-in, otherwise refreshes lastSignIn only.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,photo=string} true "Signed-in user"
// @Success 200 {object} models.User
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) UpsertUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Photo    string `json:"photo"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, created, err := s.userService.UpsertOnSignIn(c.UserContext(), service.SignInInput{
		Username: req.Username,
		Email:    req.Email,
		Photo:    req.Photo,
	})
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(user)
}

// UpdateUser handles PATCH /users?email=
// @Summary Update the signed-in user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param email query string true "User email"
// @Param request body object{username=string,photo=string} true "Fields to change"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Photo    *string `json:"photo"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.UpdateUser(c.UserContext(), c.Query("email"), service.UpdateUserInput{
		Username: req.Username,
		Photo:    req.Photo,
	}, identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), c.Params("id"), identityFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
