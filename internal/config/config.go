package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is built once at startup and passed into each component. Secrets are
// never read from the environment after this point.
type Config struct {
	Env           string
	Port          int
	DBDSN         string
	MigrationsDir string
	LogJSON       bool

	PaymobBaseURL       string
	PaymobAPIKey        string
	PaymobIntegrationID int64
	PaymobHMACSecret    string
	Currency            string
}

func Default() Config {
	return Config{
		Env:           "dev",
		Port:          5000,
		DBDSN:         "",
		MigrationsDir: "./migrations",
		LogJSON:       true,
		PaymobBaseURL: "https://accept.paymob.com/api",
		Currency:      "EGP",
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("SHOP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("SHOP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("SHOP_DB_DSN"); v != "" {
		c.DBDSN = v
	}
	if v := os.Getenv("SHOP_MIGRATIONS_DIR"); v != "" {
		c.MigrationsDir = v
	}
	if v := os.Getenv("SHOP_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	if v := os.Getenv("SHOP_PAYMOB_BASE_URL"); v != "" {
		c.PaymobBaseURL = v
	}
	if v := os.Getenv("SHOP_PAYMOB_API_KEY"); v != "" {
		c.PaymobAPIKey = v
	}
	if v := os.Getenv("SHOP_PAYMOB_INTEGRATION_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.PaymobIntegrationID = id
		}
	}
	if v := os.Getenv("SHOP_PAYMOB_HMAC_SECRET"); v != "" {
		c.PaymobHMACSecret = v
	}
	if v := os.Getenv("SHOP_CURRENCY"); v != "" {
		c.Currency = v
	}
	return c
}

// Validate refuses to start without the processor credentials. There is no
// insecure default for any of these.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.PaymobAPIKey) == "" {
		missing = append(missing, "SHOP_PAYMOB_API_KEY")
	}
	if c.PaymobIntegrationID == 0 {
		missing = append(missing, "SHOP_PAYMOB_INTEGRATION_ID")
	}
	if strings.TrimSpace(c.PaymobHMACSecret) == "" {
		missing = append(missing, "SHOP_PAYMOB_HMAC_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
