package server

import (
	"findlost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contactInfoRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// createItemRequest lists the writable item fields. Anything else in the
// body, including status, is dropped by the decoder.
type createItemRequest struct {
	PostType        string             `json:"postType"`
	Thumbnail       string             `json:"thumbnail"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Category        string             `json:"category"`
	Location        string             `json:"location"`
	ContactInfo     contactInfoRequest `json:"contactInfo"`
	UserID          string             `json:"userId"`
	LostOrFoundDate string             `json:"lostOrFounddate"`
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Thumbnail   *string `json:"thumbnail"`
	ContactInfo *struct {
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	} `json:"contactInfo"`
}

// GetItems handles GET /items
// @Summary List items
// @Description Without email, lists every item still awaiting recovery, newest first. With email, lists every item posted with that contact email.
// @Tags items
// @Produce json
// @Param email query string false "Contact email of the poster"
// @Success 200 {array} models.Item
// @Failure 500 {object} models.ErrorResponse
// @Router /items [get]
func (s *Server) GetItems(c *fiber.Ctx) error {
	items, err := s.itemService.ListItems(c.UserContext(), service.ListItemsInput{
		OwnerEmail: c.Query("email"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetMyItems handles GET /myItems/:userId
// @Summary List a user's items
// @Tags items
// @Produce json
// @Param userId path string true "Owning user ID"
// @Success 200 {array} models.Item
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /myItems/{userId} [get]
func (s *Server) GetMyItems(c *fiber.Ctx) error {
	items, err := s.itemService.ListOwnedItems(c.UserContext(), c.Params("userId"), identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetItem handles GET /items/:id
// @Summary Get item by ID
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} models.ErrorResponse
// @Router /items/{id} [get]
func (s *Server) GetItem(c *fiber.Ctx) error {
	item, err := s.itemService.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// CreateItem handles POST /items
// @Summary Post a lost or found item
// @Description New items always start as not-recovered.
// @Tags items
// @Accept json
// @Produce json
// @Param request body createItemRequest true "Item"
// @Success 201 {object} models.Item
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items [post]
func (s *Server) CreateItem(c *fiber.Ctx) error {
	var req createItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	when, err := parseDate(req.LostOrFoundDate)
	if err != nil {
		return respondError(c, err)
	}

	item, err := s.itemService.CreateItem(c.UserContext(), service.CreateItemInput{
		Requester:       identityFrom(c),
		PostType:        req.PostType,
		Thumbnail:       req.Thumbnail,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Location:        req.Location,
		ContactEmail:    req.ContactInfo.Email,
		ContactPhone:    req.ContactInfo.Phone,
		UserID:          req.UserID,
		LostOrFoundDate: when,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PATCH /items/:id
// @Summary Update an item
// @Description Only the owner may update. Status cannot be changed here.
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body updateItemRequest true "Fields to change"
// @Success 200 {object} models.Item
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [patch]
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	in := service.UpdateItemInput{
		ID:          c.Params("id"),
		Requester:   identityFrom(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Thumbnail:   req.Thumbnail,
	}
	if req.ContactInfo != nil {
		in.ContactEmail = req.ContactInfo.Email
		in.ContactPhone = req.ContactInfo.Phone
	}

	item, err := s.itemService.UpdateItem(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// DeleteItem handles DELETE /items/:id
// @Summary Delete an item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} object{message=string,data=models.Item}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [delete]
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	item, err := s.itemService.DeleteItem(c.UserContext(), c.Params("id"), identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item deleted successfully",
		"data":    item,
	})
}
