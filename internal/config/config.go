package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/TWRT/wmx-migrator/internal/client/wfm"
)

// Portal holds what it takes to talk to one Workflow Manager instance:
// the service base URL and either a ready session token or portal
// credentials to exchange for one. The token is only ever sent as an
// Authorization header.
type Portal struct {
	URL       string
	PortalURL string
	Token     string
	Username  string
	Password  string
}

type Config struct {
	Source Portal
	Dest   Portal

	DatabasePath      string
	HTTPTimeout       time.Duration
	LegacyTableBranch bool
	ServeAddr         string
}

// Load reads the configuration from viper-bound flags with .env / process
// environment as the credential source. dotenv is optional.
func Load() (Config, error) {
	_ = godotenv.Load()

	viper.SetEnvPrefix("wmx")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg := Config{
		Source: Portal{
			URL:       viper.GetString("source-url"),
			PortalURL: viper.GetString("source-portal-url"),
			Token:     viper.GetString("source-token"),
			Username:  viper.GetString("source-username"),
			Password:  viper.GetString("source-password"),
		},
		Dest: Portal{
			URL:       viper.GetString("dest-url"),
			PortalURL: viper.GetString("dest-portal-url"),
			Token:     viper.GetString("dest-token"),
			Username:  viper.GetString("dest-username"),
			Password:  viper.GetString("dest-password"),
		},
		DatabasePath:      viper.GetString("db"),
		HTTPTimeout:       viper.GetDuration("http-timeout"),
		LegacyTableBranch: viper.GetBool("legacy-table-branch"),
		ServeAddr:         viper.GetString("serve-addr"),
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./wmx-migrator.db"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return cfg, nil
}

// ResolveToken returns the portal's session token, exchanging username and
// password for one when no token was configured directly.
func (p Portal) ResolveToken(timeout time.Duration) (string, error) {
	if p.Token != "" {
		return p.Token, nil
	}
	if p.Username == "" || p.Password == "" {
		return "", fmt.Errorf("no token and no credentials configured for %s", p.URL)
	}
	portalUrl := p.PortalURL
	if portalUrl == "" {
		portalUrl = p.URL
	}
	token, err := wfm.GenerateToken(portalUrl, p.Username, p.Password, timeout)
	if err != nil {
		return "", fmt.Errorf("sign in to %s: %w", portalUrl, err)
	}
	return token, nil
}
