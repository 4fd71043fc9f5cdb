package admin

import (
	"nepalstay/internal/domain"
	"nepalstay/internal/repository"
)

type Stats struct {
	TotalUsers        int64                  `json:"totalUsers"`
	TotalProperties   int64                  `json:"totalProperties"`
	TotalBookings     int64                  `json:"totalBookings"`
	PendingProperties int64                  `json:"pendingProperties"`
	PendingOwners     int64                  `json:"pendingOwners"`
	TotalRevenue      float64                `json:"totalRevenue"`
	TopCities         []repository.CityCount `json:"topCities"`
}

type VerifyOwnerRequest struct {
	Status domain.VerificationStatus `json:"status" binding:"required,oneof=approved rejected"`
}

type ApprovePropertyRequest struct {
	IsApproved *bool `json:"isApproved" binding:"required"`
}

// Page is one page of an admin listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}
