package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	"nepalstay/internal/middleware"
	"nepalstay/internal/pkg/response"
	"nepalstay/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	payments := protected.Group("/payments")
	{
		payments.POST("/khalti", h.confirm(domain.PaymentKhalti))
		payments.POST("/esewa", h.confirm(domain.PaymentEsewa))
		payments.POST("/stripe", h.confirm(domain.PaymentStripe))
	}
}

func (h *Handler) confirm(method domain.PaymentMethod) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		ref, field := req.referenceFor(method)
		if ref == "" {
			response.ValidationError(c, "Payment reference is required",
				[]validator.FieldError{{Field: field, Message: field + " is required"}})
			return
		}

		res, err := h.service.Confirm(c.Request.Context(), middleware.Actor(c), method, req.BookingID, ref)
		if err != nil {
			response.FromError(c, err)
			return
		}
		msg := "Payment successful"
		if res.AlreadyConfirmed {
			msg = "Payment already confirmed"
		}
		response.SuccessWithMessage(c, http.StatusOK, msg, res)
	}
}
