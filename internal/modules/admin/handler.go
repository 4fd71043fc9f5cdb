package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	"nepalstay/internal/middleware"
	"nepalstay/internal/pkg/response"
	"nepalstay/internal/pkg/validator"
	"nepalstay/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /admin. Every route requires a company admin.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/verify", h.VerifyOwner)
		admin.GET("/properties", h.ListProperties)
		admin.PUT("/properties/:id/approve", h.ApproveProperty)
		admin.GET("/bookings", h.ListBookings)
	}
}

func pageOf(c *gin.Context) repository.Page {
	page, limit := response.PageParams(c)
	return repository.Page{Page: page, Limit: limit}
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) ListUsers(c *gin.Context) {
	role := domain.UserRole(c.Query("role"))
	if role != "" && !role.Valid() {
		response.ValidationError(c, "Invalid role filter", []validator.FieldError{{Field: "role", Message: "unknown role"}})
		return
	}
	res, err := h.service.ListUsers(c.Request.Context(), role, pageOf(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Items, len(res.Items), res.Total, res.Page, res.Limit)
}

func (h *Handler) VerifyOwner(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req VerifyOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	u, err := h.service.VerifyOwner(c.Request.Context(), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) ListProperties(c *gin.Context) {
	var approved *bool
	if raw := c.Query("isApproved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.ValidationError(c, "Invalid isApproved filter", []validator.FieldError{{Field: "isApproved", Message: "must be true or false"}})
			return
		}
		approved = &v
	}
	res, err := h.service.ListProperties(c.Request.Context(), approved, pageOf(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Items, len(res.Items), res.Total, res.Page, res.Limit)
}

func (h *Handler) ApproveProperty(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req ApprovePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.ApproveProperty(c.Request.Context(), id, *req.IsApproved)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ListBookings(c *gin.Context) {
	status := domain.BookingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.ValidationError(c, "Invalid status filter", []validator.FieldError{{Field: "status", Message: "unknown booking status"}})
		return
	}
	res, err := h.service.ListBookings(c.Request.Context(), status, pageOf(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Items, len(res.Items), res.Total, res.Page, res.Limit)
}
