package analytics

import (
	"fmt"
	"time"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

const (
	// UsersTable is the registered name of the users table.
	UsersTable = "users"
	// CampaignsTable is the registered name of the campaigns table.
	CampaignsTable = "campaigns"
)

// UserSchema declares the users table columns.
func UserSchema() *datatable.Schema[User] {
	return datatable.MustSchema(func(u User) string { return u.ID },
		datatable.SelectColumn[User](),
		datatable.Field("name", "Name", func(u User) any { return u.Name }),
		datatable.Field("email", "Email", func(u User) any { return u.Email }),
		datatable.Field("company", "Company", func(u User) any { return u.Company }),
		datatable.Field("role", "Role", func(u User) any { return u.Role }),
		datatable.Field("status", "Status", func(u User) any { return u.Status }),
		datatable.Field("department", "Department", func(u User) any { return u.Department }),
		withFormat(datatable.Field("salary", "Salary", func(u User) any { return u.Salary }), formatMoney),
		datatable.Field("joinDate", "Joined", func(u User) any { return u.JoinDate }),
		hidden(datatable.Field("lastActive", "Last active", func(u User) any { return u.LastActive })),
		datatable.ActionsColumn[User](),
	)
}

// CampaignSchema declares the campaigns table columns.
func CampaignSchema() *datatable.Schema[Campaign] {
	return datatable.MustSchema(func(c Campaign) string { return c.ID },
		datatable.SelectColumn[Campaign](),
		datatable.Field("name", "Campaign", func(c Campaign) any { return c.Name }),
		datatable.Field("status", "Status", func(c Campaign) any { return c.Status }),
		datatable.Field("channel", "Channel", func(c Campaign) any { return c.Channel }),
		withFormat(datatable.Field("budget", "Budget", func(c Campaign) any { return c.Budget }), formatMoney),
		withFormat(datatable.Field("spent", "Spent", func(c Campaign) any { return c.Spent }), formatMoney),
		datatable.Field("impressions", "Impressions", func(c Campaign) any { return c.Impressions }),
		datatable.Field("clicks", "Clicks", func(c Campaign) any { return c.Clicks }),
		withFormat(datatable.Field("ctr", "CTR", func(c Campaign) any { return c.CTR }), formatPercent),
		datatable.Field("conversions", "Conversions", func(c Campaign) any { return c.Conversions }),
		datatable.ActionsColumn[Campaign](),
	)
}

// TablesConfig wires the stock tables into a datatable service.
type TablesConfig struct {
	Users     UserSource
	Campaigns CampaignSource
	// Delay simulates a slow backend before rows arrive.
	Delay    time.Duration
	Activity datatable.ActivityEmitter
	Refresh  datatable.RefreshHook
}

// RegisterTables registers the users and campaigns tables. Each session gets its own mount.
func RegisterTables(svc *datatable.Service, cfg TablesConfig) error {
	if svc == nil {
		return fmt.Errorf("analytics: datatable service is required")
	}
	if cfg.Users != nil {
		users := datatable.MountFactory(UserSchema(), datatable.MountOptions[User]{
			Table: datatable.TableOptions{
				Name:    UsersTable,
				Title:   "Users",
				Refresh: cfg.Refresh,
			},
			Fetch:    cfg.Users.FetchUsers,
			Delay:    cfg.Delay,
			Activity: cfg.Activity,
		})
		if err := svc.Register(UsersTable, users); err != nil {
			return err
		}
	}
	if cfg.Campaigns != nil {
		campaigns := datatable.MountFactory(CampaignSchema(), datatable.MountOptions[Campaign]{
			Table: datatable.TableOptions{
				Name:    CampaignsTable,
				Title:   "Campaigns",
				Sort:    datatable.SortSpec{ColumnID: "spent", Direction: datatable.SortDesc},
				Refresh: cfg.Refresh,
			},
			Fetch:    cfg.Campaigns.FetchCampaigns,
			Delay:    cfg.Delay,
			Activity: cfg.Activity,
		})
		if err := svc.Register(CampaignsTable, campaigns); err != nil {
			return err
		}
	}
	return nil
}

func withFormat[R any](col datatable.Column[R], format func(any) string) datatable.Column[R] {
	col.Format = format
	return col
}

func hidden[R any](col datatable.Column[R]) datatable.Column[R] {
	col.Hidden = true
	return col
}

func formatMoney(v any) string {
	switch n := v.(type) {
	case int:
		return fmt.Sprintf("$%d", n)
	case float64:
		return fmt.Sprintf("$%.2f", n)
	}
	return fmt.Sprint(v)
}

func formatPercent(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f%%", f)
	}
	return fmt.Sprint(v)
}
