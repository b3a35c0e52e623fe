package config

import (
	"fmt"
	"time"

	"portal-agent/internal/entity"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	PortalConfig  *PortalConfig
	NetworkConfig *NetworkConfig
	BrowserConfig *BrowserConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PortalConfig struct {
	URL      string `envconfig:"PORTAL_URL" default:"http://10.10.10.9"`
	Username string `envconfig:"PORTAL_USERNAME"`
	Password string `envconfig:"PORTAL_PASSWORD"`

	// FormWaitTimeout bounds the initial login-form presence check;
	// QuickProbeTimeout bounds the fast re-checks used for state
	// classification.
	FormWaitTimeout   time.Duration `envconfig:"PORTAL_FORM_WAIT_TIMEOUT" default:"8s"`
	QuickProbeTimeout time.Duration `envconfig:"PORTAL_QUICK_PROBE_TIMEOUT" default:"3s"`
	RevealBudget      time.Duration `envconfig:"PORTAL_REVEAL_BUDGET" default:"1500ms"`
	LogoutRetries     int           `envconfig:"PORTAL_LOGOUT_RETRIES" default:"4"`

	// Post-submit connectivity polling window.
	RecoveryCeiling  time.Duration `envconfig:"PORTAL_RECOVERY_CEILING" default:"10s"`
	RecoveryInterval time.Duration `envconfig:"PORTAL_RECOVERY_INTERVAL" default:"500ms"`
}

type NetworkConfig struct {
	TargetSSID     string        `envconfig:"PORTAL_WIFI_SSID" required:"true"`
	TestURL        string        `envconfig:"PORTAL_TEST_URL" default:"https://www.baidu.com"`
	RequestTimeout time.Duration `envconfig:"PORTAL_REQUEST_TIMEOUT" default:"5s"`
	CheckInterval  time.Duration `envconfig:"PORTAL_CHECK_INTERVAL" default:"5s"`

	// Optional TCP connect probe that short-circuits the HTTP check.
	FastProbeEnabled bool          `envconfig:"PROBE_FAST_ENABLED" default:"true"`
	FastProbeHost    string        `envconfig:"PORTAL_FAST_DNS_HOST" default:"223.5.5.5"`
	FastProbePort    int           `envconfig:"PORTAL_FAST_DNS_PORT" default:"53"`
	FastProbeTimeout time.Duration `envconfig:"PORTAL_CONNECT_TIMEOUT" default:"800ms"`
}

type BrowserConfig struct {
	Headless    bool          `envconfig:"PORTAL_HEADLESS" default:"true"`
	SlowMo      int           `envconfig:"BROWSER_SLOW_MO" default:"0"`
	PageTimeout time.Duration `envconfig:"PORTAL_PAGE_TIMEOUT" default:"15s"`
	// FindTimeout is the short per-tier wait used during locator
	// fallback so a full resolve stays fast.
	FindTimeout  time.Duration `envconfig:"BROWSER_FIND_TIMEOUT" default:"1500ms"`
	ClickTimeout time.Duration `envconfig:"BROWSER_CLICK_TIMEOUT" default:"8s"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	return &conf, nil
}

// Credentials reports the configured credential pair and whether both
// halves are present.
func (c *PortalConfig) Credentials() (entity.Credential, bool) {
	cred := entity.Credential{
		Username: c.Username,
		Password: c.Password,
	}

	return cred, cred.Username != "" && cred.Password != ""
}
