// Package config holds the command line and environment settings of the dashboard binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Log configures pkg/logging.
type Log struct {
	Level  string `default:"info" env:"LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
	Format string `default:"text" enum:"text,json" env:"LOG_FORMAT" help:"Log output format."`
}

// Feed selects where table rows come from.
type Feed struct {
	URL       string        `env:"DASHBOARD_FEED_URL" help:"Remote JSON row feed. Seeded fixtures are served when empty."`
	APIKey    string        `env:"DASHBOARD_FEED_API_KEY" help:"Bearer token for the row feed."`
	Seed      int64         `default:"42" env:"DASHBOARD_SEED" help:"Fixture seed."`
	LoadDelay time.Duration `default:"1500ms" env:"DASHBOARD_LOAD_DELAY" help:"Artificial delay before rows arrive."`
}

// Server is the configuration of the dashboard server.
type Server struct {
	Addr        string `default:":8080" env:"DASHBOARD_ADDR" help:"Listen address."`
	Transport   string `default:"chi" enum:"chi,fiber" env:"DASHBOARD_TRANSPORT" help:"HTTP stack to serve with."`
	ChartAssets string `env:"DASHBOARD_CHART_ASSETS" help:"Host the ECharts script is loaded from."`
	Activity    bool   `default:"true" env:"DASHBOARD_ACTIVITY" negatable:"" help:"Record bulk table actions as activity."`
	Manifest    string `env:"DASHBOARD_MANIFEST" help:"YAML or JSON manifest of extra tables."`

	SessionIdle time.Duration `default:"30m" env:"DASHBOARD_SESSION_IDLE" help:"Unmount table sessions idle for this long."`
	MaxSessions int           `default:"1000" env:"DASHBOARD_MAX_SESSIONS" help:"Most table sessions kept mounted at once."`

	Feed Feed `embed:"" prefix:"feed-"`
	Log  Log  `embed:"" prefix:"log-"`
}

// Validate implements kong's validation hook.
func (s *Server) Validate() error {
	if s.Addr == "" {
		return errors.New("config: listen address is required")
	}
	if s.MaxSessions < 0 {
		return fmt.Errorf("config: max sessions must not be negative, got %d", s.MaxSessions)
	}
	if s.Feed.LoadDelay < 0 {
		return fmt.Errorf("config: load delay must not be negative, got %s", s.Feed.LoadDelay)
	}
	return nil
}

// LoadEnv reads dotenv files into the process environment. Missing files are skipped
// and variables already set win over file values.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// Parse fills target from args and the environment.
func Parse(target any, args []string, options ...kong.Option) (*kong.Context, error) {
	parser, err := kong.New(target, options...)
	if err != nil {
		return nil, fmt.Errorf("config: build parser: %w", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}
