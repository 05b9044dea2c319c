package analytics

import (
	"context"
	"time"
)

// User is one row of the users table.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Department string    `json:"department"`
	Salary     int       `json:"salary"`
	JoinDate   time.Time `json:"joinDate"`
	LastActive time.Time `json:"lastActive"`
}

// Campaign is one row of the campaigns table.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Channel     string  `json:"channel"`
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Conversions int     `json:"conversions"`
}

// UserSource loads user rows.
type UserSource interface {
	FetchUsers(ctx context.Context) ([]User, error)
}

// CampaignSource loads campaign rows.
type CampaignSource interface {
	FetchCampaigns(ctx context.Context) ([]Campaign, error)
}

// Client is a convenience union for sources that serve both tables.
type Client interface {
	UserSource
	CampaignSource
}
