package notification

import "github.com/cresol/hub-api/internal/pkg/apperror"

var (
	ErrNotificationNotFound = apperror.NotFound("Notification not found")
	ErrGroupNotFound        = apperror.NotFound("Notification group not found")
	ErrMemberNotFound       = apperror.NotFound("Member not found")
	ErrUserNotFound         = apperror.NotFound("User not found")
	ErrGroupNameTaken       = apperror.Conflict("A group with this name already exists")
	ErrNoRecipients         = apperror.Validation("No recipients for this notification")
)
