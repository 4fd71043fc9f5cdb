package review

import "nepalstay/internal/domain"

type CreateReviewRequest struct {
	PropertyID int64  `json:"propertyId" binding:"required,gt=0"`
	BookingID  int64  `json:"bookingId" binding:"required,gt=0"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Title      string `json:"title" binding:"max=200"`
	Comment    string `json:"comment" binding:"required,max=2000"`
}

type ReplyRequest struct {
	Reply string `json:"reply" binding:"required,max=2000"`
}

type ListResult struct {
	Reviews []*domain.ReviewView
	Total   int64
	Page    int
	Limit   int
}
