package repository

import "time"

// Contact represents a directory contact row.
type Contact struct {
	ID          string
	DisplayName string
	Extension   string
	GSM         string
	SIPAddress  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CallEntry represents a call log row.
type CallEntry struct {
	ID          string
	SessionID   string
	Remote      string
	Direction   string // incoming | outgoing
	Outcome     string // completed | missed | failed
	StartedAt   *time.Time
	ConnectedAt *time.Time
	EndedAt     *time.Time
	CreatedAt   time.Time
}
