package config

import (
	"os"
	"strconv"
	"sync"
)

// OmdbConfig OMDB 元数据接口配置
type OmdbConfig struct {
	APIURL string
	APIKey string
}

// MailConfig 邮件发送配置
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
	UseTLS      bool
	Enabled     bool
}

type Config struct {
	JWTSecret string
	Omdb      OmdbConfig
	Mail      MailConfig
}

var (
	config *Config
	once   sync.Once
)

// GetConfig 获取全局配置，首次调用时从环境变量加载
func GetConfig() *Config {
	once.Do(func() {
		config = &Config{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Omdb: OmdbConfig{
				APIURL: envOrDefault("OMDB_API_URL", "https://www.omdbapi.com/"),
				APIKey: os.Getenv("OMDB_API_KEY"),
			},
			Mail: MailConfig{
				Host:        os.Getenv("MAIL_HOST"),
				Port:        envInt("MAIL_PORT", 587),
				Username:    os.Getenv("MAIL_USERNAME"),
				Password:    os.Getenv("MAIL_PASSWORD"),
				FromName:    envOrDefault("MAIL_FROM_NAME", "What to Watch"),
				FromAddress: os.Getenv("MAIL_FROM_ADDRESS"),
				UseTLS:      envBool("MAIL_USE_TLS", true),
				Enabled:     os.Getenv("MAIL_HOST") != "",
			},
		}
	})
	return config
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
