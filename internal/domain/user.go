package domain

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser          UserRole = "user"
	RolePropertyOwner UserRole = "propertyOwner"
	RoleCompanyAdmin  UserRole = "companyAdmin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RolePropertyOwner, RoleCompanyAdmin:
		return true
	}
	return false
}

// VerificationStatus tracks the owner document review. Empty means the owner
// never uploaded documents.
type VerificationStatus string

const (
	VerificationUnset    VerificationStatus = ""
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type VerificationDocuments struct {
	BusinessRegistration string `json:"businessRegistration,omitempty"`
	CitizenshipID        string `json:"citizenshipId,omitempty"`
}

type User struct {
	ID                 int64                                     `json:"id" gorm:"primaryKey"`
	Name               string                                    `json:"name" gorm:"not null"`
	Email              string                                    `json:"email" gorm:"uniqueIndex;not null"`
	Phone              string                                    `json:"phone,omitempty"`
	Avatar             string                                    `json:"avatar,omitempty"`
	PasswordHash       string                                    `json:"-" gorm:"not null"`
	Role               UserRole                                  `json:"role" gorm:"type:varchar(32);index;not null"`
	IsVerified         bool                                      `json:"isVerified"`
	VerificationStatus VerificationStatus                        `json:"verificationStatus,omitempty" gorm:"type:varchar(16);index"`
	VerificationDocs   datatypes.JSONType[VerificationDocuments] `json:"verificationDocuments"`
	CreatedAt          time.Time                                 `json:"createdAt"`
	UpdatedAt          time.Time                                 `json:"updatedAt"`
}

// UserSummary is the identity subset embedded into bookings and reviews.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}
