package domain

import "time"

type OwnerReply struct {
	Text      string     `json:"text,omitempty"`
	RepliedAt *time.Time `json:"repliedAt,omitempty"`
}

type Review struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	UserID     int64      `json:"userId" gorm:"index;not null"`
	PropertyID int64      `json:"propertyId" gorm:"index;not null"`
	BookingID  int64      `json:"bookingId" gorm:"uniqueIndex:idx_reviews_booking;not null"`
	Rating     int        `json:"rating" gorm:"not null"`
	Title      string     `json:"title,omitempty"`
	Comment    string     `json:"comment" gorm:"type:text;not null"`
	OwnerReply OwnerReply `json:"ownerReply" gorm:"embedded;embeddedPrefix:reply_"`
	IsVerified bool       `json:"isVerified"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

type ReviewView struct {
	Review
	User *UserSummary `json:"user,omitempty"`
}

func NewReviewView(r *Review) *ReviewView {
	v := &ReviewView{Review: *r}
	if r.User != nil {
		v.User = &UserSummary{ID: r.User.ID, Name: r.User.Name}
	}
	return v
}
