package server

import (
	"findlost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type recordRecoveryRequest struct {
	ItemID       string `json:"itemId"`
	UserID       string `json:"userId"`
	RecoveryInfo struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Photo    string `json:"photo"`
		Location string `json:"location"`
	} `json:"recoveryInfo"`
}

// GetRecoveries handles GET /recoverItems
// @Summary List recoveries
// @Description With email, lists the recoveries made by that recoverer; the caller must be signed in with the same email.
// @Tags recoveries
// @Produce json
// @Param email query string false "Recoverer email"
// @Success 200 {array} models.RecoveredItem
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /recoverItems [get]
func (s *Server) GetRecoveries(c *fiber.Ctx) error {
	recs, err := s.recoveryService.ListRecoveries(c.UserContext(), c.Query("email"), identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recs)
}

// RecordRecovery handles POST /recoverItems
// @Summary Record that an item was recovered
// @Description Marks the item recovered and stores who recovered it. A second recovery of the same item is rejected.
// @Tags recoveries
// @Accept json
// @Produce json
// @Param request body recordRecoveryRequest true "Recovery"
// @Success 201 {object} models.RecoveredItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /recoverItems [post]
func (s *Server) RecordRecovery(c *fiber.Ctx) error {
	var req recordRecoveryRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	rec, err := s.recoveryService.RecordRecovery(c.UserContext(), service.RecordRecoveryInput{
		ItemID:   req.ItemID,
		UserID:   req.UserID,
		Name:     req.RecoveryInfo.Name,
		Email:    req.RecoveryInfo.Email,
		Photo:    req.RecoveryInfo.Photo,
		Location: req.RecoveryInfo.Location,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rec)
}
