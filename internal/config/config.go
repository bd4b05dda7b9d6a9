package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port string
	// CORS
	AllowedOrigins []string
	CORSMaxAge     int
	// Completion backend
	Provider          string
	GeminiAPIKey      string
	GeminiAccessToken string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	LLMTimeout        time.Duration
	// Persona and reply handling
	PersonaFile      string
	StrictNavigation bool
	// Logging
	LogLevel  string
	LogFormat string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigins:    getEnvListDefault("ALLOWED_ORIGINS", []string{"https://tanxdev.github.io"}),
		CORSMaxAge:        getEnvIntDefault("CORS_MAX_AGE", 3600),
		Provider:          strings.ToLower(getEnvDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:      getEnvDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiAccessToken: os.Getenv("GEMINI_ACCESS_TOKEN"),
		GeminiModel:       getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:        getEnvDurationDefault("LLM_TIMEOUT", 30*time.Second),
		PersonaFile:       os.Getenv("PERSONA_FILE"),
		StrictNavigation:  getEnvBoolDefault("STRICT_NAVIGATION", false),
		LogLevel:          getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvDefault("LOG_FORMAT", "json"),
	}
}

// HasCredential reports whether the selected provider has something to
// authenticate with.
func (c Config) HasCredential() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != "" || c.GeminiAccessToken != ""
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvDurationDefault accepts Go durations ("45s") or a bare number of seconds.
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
