package analytics

import (
	"context"
	"slices"
	"sync"
)

// MockData seeds deterministic rows for tests or local demos.
type MockData struct {
	Users     []User
	Campaigns []Campaign
}

// DefaultMockData generates the demo rows: 50 users and 30 campaigns.
func DefaultMockData(seed int64) MockData {
	return MockData{
		Users:     GenerateUsers(50, seed),
		Campaigns: GenerateCampaigns(30, seed+1),
	}
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchUsers returns a copy of the configured users.
func (c *MockClient) FetchUsers(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Users), nil
}

// FetchCampaigns returns a copy of the configured campaigns.
func (c *MockClient) FetchCampaigns(ctx context.Context) ([]Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Campaigns), nil
}

// SetUsers replaces the users served by later fetches.
func (c *MockClient) SetUsers(users []User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Users = slices.Clone(users)
}
