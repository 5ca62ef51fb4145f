package config

import (
	"encoding/xml"
	"io"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg  *APIConfig
	once sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	Pagination     PaginationConfig     `xml:"PAGINATION"`
	DB             DBConfig             `xml:"DB"`
	ThirdParty     ThirdPartyConfig     `xml:"THIRD_PARTY"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	Path     string `xml:"PATH"`
	TimeZone string `xml:"TIME_ZONE"`
	LogDir   string `xml:"LOG_DIR"`
}

// ThirdPartyConfig holds external service settings. Secrets here may be
// overridden from the environment (see LoadConfig).
type ThirdPartyConfig struct {
	TutorURL         string `xml:"TUTOR_URL"`
	TutorModel       string `xml:"TUTOR_MODEL"`
	MuxWebhookSecret string `xml:"MUX_WEBHOOK_SECRET"`
	RedisAddr        string `xml:"REDIS_ADDR"`
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	AccessSecret        string `xml:"ACCESS_SECRET"`
	RefreshSecret       string `xml:"REFRESH_SECRET"`
	AccessExpiryMinutes int    `xml:"ACCESS_EXPIRY_MINUTES"`
	RefreshExpiryHours  int    `xml:"REFRESH_EXPIRY_HOURS"`
	RateLimitPerSecond  int    `xml:"RATE_LIMIT_PER_SECOND"`
	RateLimitBurst      int    `xml:"RATE_LIMIT_BURST"`
}

// PaginationConfig holds pagination settings.
type PaginationConfig struct {
	PageSize int `xml:"PAGE_SIZE"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	SSLMode    string       `xml:"SSL_MODE"`
	Name       string       `xml:"NAME"`
	Username   string       `xml:"USERNAME"`
	Password   string       `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// LoadConfig loads and parses the XML configuration from the given file.
// A .env file, when present, overlays the secret-bearing fields so that
// config.xml can be committed without credentials.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		f, err := os.Open(xmlPath)
		if err != nil {
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return
		}

		var newCfg APIConfig
		if err := xml.Unmarshal(data, &newCfg); err != nil {
			return
		}

		_ = godotenv.Load()
		overlayEnv(&newCfg)

		cfg = &newCfg
	})

	if cfg == nil {
		return nil, os.ErrInvalid
	}
	return cfg, nil
}

func overlayEnv(c *APIConfig) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("JWT_ACCESS_SECRET"); v != "" {
		c.Authentication.AccessSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		c.Authentication.RefreshSecret = v
	}
	if v := os.Getenv("MUX_WEBHOOK_SECRET"); v != "" {
		c.ThirdParty.MuxWebhookSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.ThirdParty.RedisAddr = v
	}
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}
