// Package events publishes domain events for downstream consumers such as
// search indexers.
package events

import (
	"context"
	"time"
)

const TopicProfileUpdated = "profiles.updated"

// ProfileUpdated is emitted after a profile edit commits. It carries no
// contact details; consumers look those up by UserID.
type ProfileUpdated struct {
	UserID         int64     `json:"user_id"`
	ProfileID      int64     `json:"profile_id"`
	Gender         string    `json:"gender,omitempty"`
	Education      string    `json:"education,omitempty"`
	WorkExperience string    `json:"work_experience"`
	Skills         []string  `json:"skills"`
	HasPhoto       bool      `json:"has_photo"`
	HasResume      bool      `json:"has_resume"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers events keyed for partitioning.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
