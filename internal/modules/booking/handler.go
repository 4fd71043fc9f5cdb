package booking

import (
	"net/http"

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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/properties/:id/availability", h.Availability)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.PUT("/:id/cancel", h.Cancel)
		bookings.PUT("/:id/status",
			middleware.RequireRole(domain.RolePropertyOwner, domain.RoleCompanyAdmin),
			h.SetStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// List handles GET /bookings?status=&page=&limit=.
func (h *Handler) List(c *gin.Context) {
	status := domain.BookingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.ValidationError(c, "Invalid status filter", []validator.FieldError{{Field: "status", Message: "unknown booking status"}})
		return
	}
	page, limit := response.PageParams(c)

	res, err := h.service.List(c.Request.Context(), middleware.Actor(c), status, repository.Page{Page: page, Limit: limit})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Bookings, len(res.Bookings), res.Total, res.Page, res.Limit)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	view, err := h.service.Cancel(c.Request.Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Booking cancelled", view)
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.service.SetStatus(c.Request.Context(), middleware.Actor(c), id, req.Status, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Availability handles GET /properties/:id/availability?checkIn=&checkOut=.
func (h *Handler) Availability(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	checkIn, err := ParseDate(q.CheckIn)
	if err != nil {
		response.ValidationError(c, "Invalid checkIn", []validator.FieldError{{Field: "checkIn", Message: err.Error()}})
		return
	}
	checkOut, err := ParseDate(q.CheckOut)
	if err != nil {
		response.ValidationError(c, "Invalid checkOut", []validator.FieldError{{Field: "checkOut", Message: err.Error()}})
		return
	}

	av, err := h.service.Availability(c.Request.Context(), id, checkIn, checkOut)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, av)
}
