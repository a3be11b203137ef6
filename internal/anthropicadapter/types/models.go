package types

import "time"

// ModelList is the paginated body of a model listing.
type ModelList struct {
	Data    []ModelInfo `json:"data"`
	FirstID *string     `json:"first_id"`
	LastID  *string     `json:"last_id"`
	HasMore bool        `json:"has_more"`
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewModelInfo builds a model entry with the fixed object type.
func NewModelInfo(id, displayName string, createdAt time.Time) ModelInfo {
	return ModelInfo{
		Type:        "model",
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}
}
