package domain

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == RoleCompanyAdmin }

type Action string

const (
	ActionViewBooking      Action = "booking:view"
	ActionCancelBooking    Action = "booking:cancel"
	ActionSetBookingStatus Action = "booking:set-status"
	ActionPayBooking       Action = "booking:pay"
	ActionReviewBooking    Action = "booking:review"
	ActionCreateProperty   Action = "property:create"
	ActionManageProperty   Action = "property:manage"
	ActionReplyReview      Action = "review:reply"
	ActionModerate         Action = "admin:moderate"
)

// Resource carries the ownership facts a capability check needs. Fields a
// given action does not use can stay zero.
type Resource struct {
	// OwnerUserID is the user the resource belongs to (booking guest).
	OwnerUserID int64
	// PropertyOwnerID is the owner of the property the resource hangs off.
	PropertyOwnerID int64
}

// Authorize decides whether actor may perform action on res.
func Authorize(actor Actor, action Action, res Resource) bool {
	if actor.UserID == 0 {
		return false
	}
	switch action {
	case ActionViewBooking:
		return actor.IsAdmin() ||
			actor.UserID == res.OwnerUserID ||
			(actor.Role == RolePropertyOwner && actor.UserID == res.PropertyOwnerID)
	case ActionCancelBooking:
		return actor.IsAdmin() || actor.UserID == res.OwnerUserID
	case ActionSetBookingStatus, ActionManageProperty, ActionReplyReview:
		return actor.IsAdmin() ||
			(actor.Role == RolePropertyOwner && actor.UserID == res.PropertyOwnerID)
	case ActionPayBooking, ActionReviewBooking:
		return actor.UserID == res.OwnerUserID
	case ActionCreateProperty:
		return actor.IsAdmin() || actor.Role == RolePropertyOwner
	case ActionModerate:
		return actor.IsAdmin()
	}
	return false
}
