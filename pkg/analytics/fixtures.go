package analytics

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	firstNames  = []string{"John", "Jane", "Michael", "Sarah", "David", "Emma", "James", "Lisa", "Robert", "Maria", "William", "Jessica"}
	lastNames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Martinez", "Wilson"}
	companies   = []string{"Acme Corp", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries", "Wayne Enterprises"}
	roles       = []string{"Admin", "Manager", "Analyst", "Viewer", "Editor", "Contributor"}
	statuses    = []string{"active", "inactive", "pending"}
	departments = []string{"Marketing", "Sales", "Engineering", "Design", "Operations", "Finance", "HR", "Support"}

	campaignStatuses = []string{"active", "paused", "completed", "draft"}
	channels         = []string{"Google Ads", "Facebook", "Instagram", "LinkedIn", "Twitter", "Email", "TikTok"}
	campaignThemes   = []string{"Summer Sale", "Product Launch", "Brand Awareness", "Holiday Promo", "Retargeting", "Webinar Signup", "Black Friday"}
)

// GenerateUsers returns n users. The same seed always yields the same rows, ids included.
func GenerateUsers(n int, seed int64) []User {
	rng := rand.New(rand.NewSource(seed))
	users := make([]User, n)
	for i := range users {
		first := pick(rng, firstNames)
		last := pick(rng, lastNames)
		company := pick(rng, companies)
		joined := time.Date(2020+rng.Intn(4), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		users[i] = User{
			ID:         newID(rng),
			Name:       first + " " + last,
			Email:      fmt.Sprintf("%s.%s@%s.com", strings.ToLower(first), strings.ToLower(last), slug(company)),
			Company:    company,
			Role:       pick(rng, roles),
			Status:     pick(rng, statuses),
			Department: pick(rng, departments),
			Salary:     40000 + rng.Intn(120)*1000,
			JoinDate:   joined,
			LastActive: time.Date(2024, time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC),
		}
	}
	return users
}

// GenerateCampaigns returns n campaigns with consistent spend, click and conversion figures.
func GenerateCampaigns(n int, seed int64) []Campaign {
	rng := rand.New(rand.NewSource(seed))
	campaigns := make([]Campaign, n)
	for i := range campaigns {
		budget := float64(1000 + rng.Intn(49)*1000)
		impressions := 10000 + rng.Intn(490000)
		clicks := impressions * (1 + rng.Intn(80)) / 1000
		campaigns[i] = Campaign{
			ID:          newID(rng),
			Name:        fmt.Sprintf("%s %d", pick(rng, campaignThemes), 2024+i%2),
			Status:      pick(rng, campaignStatuses),
			Channel:     pick(rng, channels),
			Budget:      budget,
			Spent:       round2(budget * (0.1 + 0.9*rng.Float64())),
			Impressions: impressions,
			Clicks:      clicks,
			CTR:         round2(float64(clicks) / float64(impressions) * 100),
			Conversions: clicks * (1 + rng.Intn(15)) / 100,
		}
	}
	return campaigns
}

func newID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
