package models

import "time"

type BlockedResource struct {
	ResourceID string    `json:"resource"`
	Product    string    `json:"product"`
	ReportedAt time.Time `json:"reported_at"`
}
