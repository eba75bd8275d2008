package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/productvote/catalog-service/internal/api/metrics"
	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

// ProductHandler handles HTTP requests for catalog products.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// --- Request / Response types ---

type voteRequest struct {
	UserEmail string `json:"userEmail" validate:"required"`
}

type updateResponse struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	Message       string `json:"message,omitempty"`
}

type deleteResponse struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func newUpdateResponse(res *domain.UpdateResult) updateResponse {
	resp := updateResponse{
		Acknowledged:  true,
		MatchedCount:  res.Matched,
		ModifiedCount: res.Modified,
	}
	if res.Modified == 0 {
		resp.Message = "no changes applied"
	}
	return resp
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Product  true  "Product document; unknown fields are stored as-is"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var p domain.Product
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.Create(c.Request().Context(), &p)
	if err != nil {
		return err
	}

	metrics.ProductsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, created)
}

// List handles GET /products.
func (h *ProductHandler) List(c echo.Context) error {
	return h.respondList(c, func() ([]domain.Product, error) {
		return h.service.List(c.Request().Context(), ports.ProductFilter{})
	})
}

// ListAccepted handles GET /products/accepted.
func (h *ProductHandler) ListAccepted(c echo.Context) error {
	return h.respondList(c, func() ([]domain.Product, error) {
		return h.service.ListAccepted(c.Request().Context())
	})
}

// ListFeatured handles GET /products/Featured.
func (h *ProductHandler) ListFeatured(c echo.Context) error {
	return h.respondList(c, func() ([]domain.Product, error) {
		return h.service.ListFeatured(c.Request().Context())
	})
}

// ListReported handles GET /products/reported.
func (h *ProductHandler) ListReported(c echo.Context) error {
	return h.respondList(c, func() ([]domain.Product, error) {
		return h.service.ListReported(c.Request().Context())
	})
}

// ListByOwner handles GET /products/byEmail/:email.
//
// @Summary      List products submitted by one owner
// @Tags         products
// @Produce      json
// @Param        email  path      string  true  "Owner email"
// @Success      200    {array}   domain.Product
// @Router       /products/byEmail/{email} [get]
func (h *ProductHandler) ListByOwner(c echo.Context) error {
	email := c.Param("email")
	return h.respondList(c, func() ([]domain.Product, error) {
		return h.service.List(c.Request().Context(), ports.ProductFilter{OwnerEmail: email})
	})
}

func (h *ProductHandler) respondList(c echo.Context, list func() ([]domain.Product, error)) error {
	products, err := list()
	if err != nil {
		return err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id (24 hex characters)"
// @Success      200  {object}  domain.Product
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Replace handles PUT /products/:id. Every field present in the body is
// merged into the stored document, empty values included.
//
// @Summary      Update product fields
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Product id"
// @Param        body  body      object          true  "Fields to set"
// @Success      200   {object}  updateResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Replace(c echo.Context) error {
	// Body only: path params must not end up in the $set document.
	var body map[string]any
	if err := new(echo.DefaultBinder).BindBody(c, &body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.service.Replace(c.Request().Context(), c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUpdateResponse(res))
}

// Accept handles PATCH /products/accept/:id.
func (h *ProductHandler) Accept(c echo.Context) error {
	return h.moderate(c, "accept", h.service.Accept)
}

// Reject handles PATCH /products/reject/:id.
func (h *ProductHandler) Reject(c echo.Context) error {
	return h.moderate(c, "reject", h.service.Reject)
}

// Feature handles PATCH /products/feature/:id.
func (h *ProductHandler) Feature(c echo.Context) error {
	return h.moderate(c, "feature", h.service.Feature)
}

// Report handles PATCH /products/reported/:id.
func (h *ProductHandler) Report(c echo.Context) error {
	return h.moderate(c, "report", h.service.Report)
}

type moderationFunc func(ctx context.Context, id string) (*domain.UpdateResult, error)

func (h *ProductHandler) moderate(c echo.Context, action string, apply moderationFunc) error {
	res, err := apply(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.ProductModerationTotal.WithLabelValues(action).Inc()
	return c.JSON(http.StatusOK, newUpdateResponse(res))
}

// Vote handles PATCH /products/:id/vote.
//
// @Summary      Vote for a product
// @Description  Each email may vote once per product.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Product id"
// @Param        body  body      voteRequest  true  "Voter"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string  "missing email, invalid id or User already voted"
// @Failure      404   {object}  map[string]string
// @Router       /products/{id}/vote [patch]
func (h *ProductHandler) Vote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.Vote(c.Request().Context(), c.Param("id"), req.UserEmail)
	if err != nil {
		metrics.VotesTotal.WithLabelValues(voteResult(err)).Inc()
		return err
	}

	metrics.VotesTotal.WithLabelValues("recorded").Inc()
	return c.JSON(http.StatusOK, p)
}

func voteResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Delete handles DELETE /products/:id. Deleting an unknown product reports
// deletedCount 0.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	n, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Acknowledged: true, DeletedCount: n})
}
