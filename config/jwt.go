package config

import (
	"log/slog"
	"time"
)

const devJWTSecret = "your-secret-key-change-this-in-production"

type JWTConfig struct {
	Secret     string        `koanf:"secret"`
	Expiration time.Duration `koanf:"expiration"`
	CookieName string        `koanf:"cookie_name"`
	Secure     bool          `koanf:"secure_cookie"`
}

func (j *JWTConfig) setDefaults() {
	if j.Secret == "" {
		slog.Warn("jwt.secret is empty, falling back to the development secret; set JWT_SECRET")
		j.Secret = devJWTSecret
	}
	if j.Expiration == 0 {
		j.Expiration = 24 * time.Hour
	}
	if j.CookieName == "" {
		j.CookieName = "access_token"
	}
}

func (j JWTConfig) SecretKey() []byte {
	return []byte(j.Secret)
}
