package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	MongoURI     string
	MongoDB      string
	UploadDir    string
	SessionKey   []byte
	CSRFKey      []byte
	CookieDomain string
	CookieSecure bool

	// Password for the bootstrap admin user. When empty a random one is
	// generated and logged once at startup.
	AdminPassword string

	Mail MailConfig
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Staff mailbox that receives enquiry notifications.
	Admin string

	SendTimeout   time.Duration
	MaxConcurrent int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn("No .env file found, falling back to environment variables", "error", err)
	}
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8585")
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DB", "mumbai_tech")
	viper.SetDefault("UPLOAD_DIR", "static/uploads")
	viper.SetDefault("MAIL_HOST", "smtp.gmail.com")
	viper.SetDefault("MAIL_PORT", 587)
	viper.SetDefault("MAIL_FROM", "noreply@mumbai-tech.com")
	viper.SetDefault("MAIL_SEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("MAIL_MAX_CONCURRENT", 4)

	cfg := &Config{
		Port:          viper.GetString("PORT"),
		MongoURI:      viper.GetString("MONGODB_URI"),
		MongoDB:       viper.GetString("MONGODB_DB"),
		UploadDir:     viper.GetString("UPLOAD_DIR"),
		CookieDomain:  viper.GetString("COOKIE_DOMAIN"),
		CookieSecure:  viper.GetBool("COOKIE_SECURE"),
		AdminPassword: viper.GetString("ADMIN_PASSWORD"),
		Mail: MailConfig{
			Host:          viper.GetString("MAIL_HOST"),
			Port:          viper.GetInt("MAIL_PORT"),
			Username:      viper.GetString("MAIL_USERNAME"),
			Password:      viper.GetString("MAIL_PASSWORD"),
			From:          viper.GetString("MAIL_FROM"),
			Admin:         viper.GetString("MAIL_ADMIN"),
			SendTimeout:   time.Duration(viper.GetInt("MAIL_SEND_TIMEOUT_SECONDS")) * time.Second,
			MaxConcurrent: viper.GetInt("MAIL_MAX_CONCURRENT"),
		},
	}

	cfg.SessionKey = loadKey("SESSION_KEY")
	cfg.CSRFKey = loadKey("CSRF_KEY")

	if cfg.Mail.Admin == "" {
		cfg.Mail.Admin = cfg.Mail.Username
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT value, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8585"
	}

	return cfg, nil
}

// loadKey decodes a base64 key from the environment, generating a random one
// when it is missing or too short. Generated keys change on restart, so
// sessions and CSRF tokens do not survive a redeploy without a real key.
func loadKey(name string) []byte {
	encoded := viper.GetString(name)
	if encoded == "" {
		slog.Warn("Key not set, generating a random one for this run. Set it in production!", "key", name)
		return randomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(decoded) < 32 {
		slog.Warn("Key is invalid or shorter than 32 bytes, generating a random one. Set a proper key in production!", "key", name)
		return randomBytes(32)
	}
	return decoded
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the host is in serious trouble; a
		// time-derived value at least keeps a dev process running.
		slog.Error("Failed to read random bytes", "error", err)
		fallback := make([]byte, n)
		copy(fallback, strconv.FormatInt(time.Now().UnixNano(), 10))
		return fallback
	}
	return b
}
