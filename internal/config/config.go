package config

import (
	"os"
	"strconv"
	"strings"
)

// StoreConfig holds character record persistence settings.
// Backend selects between the flat-file JSON store ("json") and the
// embedded SQLite store ("sqlite").
type StoreConfig struct {
	Backend    string
	DataDir    string
	SQLitePath string
}

// UploadConfig holds portrait storage settings. Backend selects between
// the local upload directory ("local") and S3-compatible storage ("s3").
type UploadConfig struct {
	Backend     string
	Dir         string
	AllowedExts []string
}

// MinIOConfig holds object storage settings for the S3 portrait backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated once from environment variables at process start and
// passed by reference; there is no ambient global configuration state.
type AppConfig struct {
	Port   string
	Store  StoreConfig
	Upload UploadConfig
	MinIO  MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port: getEnv("PORT", "8080"),
		Store: StoreConfig{
			Backend:    getEnv("STORE_BACKEND", "json"),
			DataDir:    getEnv("DATA_DIR", "data/characters"),
			SQLitePath: getEnv("SQLITE_PATH", "data/charkeep.db"),
		},
		Upload: UploadConfig{
			Backend:     getEnv("IMAGE_BACKEND", "local"),
			Dir:         getEnv("UPLOAD_DIR", "static/uploads"),
			AllowedExts: getEnvList("IMAGE_ALLOWED_EXT", []string{"png", "jpg", "jpeg", "gif", "webp"}),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
