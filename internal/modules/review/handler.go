package review

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	"nepalstay/internal/middleware"
	"nepalstay/internal/pkg/response"
	"nepalstay/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/reviews/property/:propertyId", h.ListByProperty)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	reviews := protected.Group("/reviews")
	{
		reviews.POST("", h.Create)
		reviews.PUT("/:id/reply",
			middleware.RequireRole(domain.RolePropertyOwner, domain.RoleCompanyAdmin),
			h.Reply)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	rv, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rv)
}

func (h *Handler) ListByProperty(c *gin.Context) {
	propertyID, ok := response.ParamID(c, "propertyId")
	if !ok {
		return
	}
	page, limit := response.PageParams(c)
	res, err := h.service.ListByProperty(c.Request.Context(), propertyID, repository.Page{Page: page, Limit: limit})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Reviews, len(res.Reviews), res.Total, res.Page, res.Limit)
}

func (h *Handler) Reply(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	rv, err := h.service.Reply(c.Request.Context(), middleware.Actor(c), id, req.Reply)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}
