package dto

import "time"

// ListActorActionsRequest filters the audit trail by acting user and window.
type ListActorActionsRequest struct {
	ChangedBy *string
	From      *time.Time
	To        *time.Time
	Limit     int
}
