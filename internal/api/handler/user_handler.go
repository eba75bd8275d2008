package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/productvote/catalog-service/internal/api/metrics"
	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	PhotoURL string `json:"photoURL"`
}

type userExistsResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

// Register creates the account for an email on first sign-in.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest     true  "User profile"
// @Success      201   {object}  domain.User
// @Success      200   {object}  userExistsResponse  "email already registered"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}

	if !res.Created {
		metrics.UsersRegisteredTotal.WithLabelValues("exists").Inc()
		return c.JSON(http.StatusOK, userExistsResponse{Message: "user already exists"})
	}

	metrics.UsersRegisteredTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, res.User)
}

// List handles GET /users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}
