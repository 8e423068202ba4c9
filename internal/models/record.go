package models

import "time"

// RawRecord is a source-shaped payload straight off the wire. It is
// consumed by normalization and never persisted as-is.
type RawRecord map[string]any

// Field length caps enforced at normalization time.
const (
	MaxTitleLen       = 500
	MaxDescriptionLen = 1000
)

// NormalizedRecord is the canonical record shape every source is mapped
// into before validation and persistence.
type NormalizedRecord struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	PublishedAt   time.Time  `json:"publishedAt"`
	DocumentURL   string     `json:"documentUrl"`
	SourceType    SourceType `json:"sourceType"`
	Priority      Priority   `json:"priority"`
	Region        string     `json:"region"`
	DeviceClasses []string   `json:"deviceClasses,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	// RawData optionally echoes the raw payload for debugging.
	RawData RawRecord `json:"rawData,omitempty"`
}
