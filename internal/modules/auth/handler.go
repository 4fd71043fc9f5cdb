package auth

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	"nepalstay/internal/middleware"
	"nepalstay/internal/pkg/response"
)

// DocumentStore persists uploaded verification documents.
type DocumentStore interface {
	Save(fh *multipart.FileHeader, category string) (string, error)
}

type Handler struct {
	service *Service
	docs    DocumentStore
}

func NewHandler(service *Service, docs DocumentStore) *Handler {
	return &Handler{service: service, docs: docs}
}

// RegisterPublicRoutes mounts register and login. limit throttles both per client.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, limit gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	if limit != nil {
		authGroup.Use(limit)
	}
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/profile", h.GetProfile)
		userGroup.PUT("/profile", h.UpdateProfile)
		userGroup.POST("/verify-documents",
			middleware.RequireRole(domain.RolePropertyOwner),
			h.UploadVerificationDocuments)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), middleware.Actor(c).UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.Actor(c).UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UploadVerificationDocuments accepts multipart fields businessRegistration
// and citizenshipId.
func (h *Handler) UploadVerificationDocuments(c *gin.Context) {
	var docs domain.VerificationDocuments
	for field, dst := range map[string]*string{
		"businessRegistration": &docs.BusinessRegistration,
		"citizenshipId":        &docs.CitizenshipID,
	} {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		path, err := h.docs.Save(fh, "verification")
		if err != nil {
			response.FromError(c, err)
			return
		}
		*dst = path
	}

	user, err := h.service.SubmitVerification(c.Request.Context(), middleware.Actor(c), docs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Documents uploaded successfully. Verification pending.", user)
}
