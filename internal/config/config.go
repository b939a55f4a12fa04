package config

import "os"

type Config struct {
	APIBaseURL string
	DBPath     string
	MediaPath  string
	LogLevel   string
	LogFormat  string
	LogFile    string
	SeedDemo   bool
}

func Load() *Config {
	return &Config{
		APIBaseURL: getEnv("MARINSPECT_API_URL", "http://localhost:8000"),
		DBPath:     getEnv("MARINSPECT_DB_PATH", "marinspect.db"),
		MediaPath:  getEnv("MARINSPECT_MEDIA_PATH", "."),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		LogFile:    getEnv("LOG_FILE", ""),
		SeedDemo:   os.Getenv("MARINSPECT_NO_SEED") == "",
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
