package catalog

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
	props := v1.Group("/properties")
	{
		props.GET("", h.Search)
		props.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	manage := middleware.RequireRole(domain.RolePropertyOwner, domain.RoleCompanyAdmin)
	props := protected.Group("/properties")
	{
		props.GET("/owner/my-properties", middleware.RequireRole(domain.RolePropertyOwner), h.MyProperties)
		props.POST("", manage, h.Create)
		props.PUT("/:id", manage, h.Update)
		props.DELETE("/:id", manage, h.Delete)
	}
}

// Search handles GET /properties.
func (h *Handler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Properties, len(res.Properties), res.Total, res.Page, res.Limit)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) MyProperties(c *gin.Context) {
	page, limit := response.PageParams(c)
	res, err := h.service.MyProperties(c.Request.Context(), middleware.Actor(c).UserID, repository.Page{Page: page, Limit: limit})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.List(c, res.Properties, len(res.Properties), res.Total, res.Page, res.Limit)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Property removed", nil)
}
