package dashboard

// MainArea is the overview grid above the tables.
const MainArea = "overview.main"

// DefaultAreas returns the stock overview widgets, backed by the users and campaigns tables.
func DefaultAreas() []Area {
	return []Area{
		{
			Code: MainArea,
			Name: "Overview",
			Widgets: []Widget{
				{ID: "users-by-status", Title: "Users by status", Kind: ChartBar, Table: "users", GroupBy: "status"},
				{ID: "users-by-department", Title: "Users by department", Kind: ChartPie, Table: "users", GroupBy: "department"},
				{ID: "spend-by-channel", Title: "Spend by channel", Kind: ChartBar, Table: "campaigns", GroupBy: "channel", Metric: "spent"},
				{ID: "clicks-by-status", Title: "Clicks by campaign status", Kind: ChartLine, Table: "campaigns", GroupBy: "status", Metric: "clicks"},
			},
		},
	}
}
