package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CROPVISION_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CROPVISION_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func stringOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func KnowledgeBasePath() string {
	return stringOr("KNOWLEDGE_BASE_PATH", "data/pests_diseases.json")
}

func ExpertsPath() string {
	return stringOr("EXPERTS_PATH", "data/experts.yaml")
}

func SoilDataPath() string {
	return stringOr("SOIL_DATA_PATH", "data/soil_types.json")
}

// VisionProvider returns the configured primary vision provider.
// Defaults to "plantid" if not set.
// Valid values: plantid, mock, none
func VisionProvider() string {
	return stringOr("VISION_PROVIDER", "plantid")
}

func PlantIDAPIKey() string {
	return os.Getenv("PLANT_ID_API_KEY")
}

func PlantIDBaseURL() string {
	return stringOr("PLANT_ID_BASE_URL", "https://api.plant.id/v2")
}

func PlantIDMaxPerMinute() int {
	return positiveInt("PLANT_ID_MAX_PER_MINUTE", 60)
}

func PlantIDMaxPerDay() int {
	return positiveInt("PLANT_ID_MAX_PER_DAY", 1000)
}

// IdentifyTimeout bounds one identification request end to end.
// Defaults to 60s if not set or unparsable.
func IdentifyTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("IDENTIFY_TIMEOUT"))
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// MaxImageBytes returns the upload limit for identification images.
// Defaults to 10 MiB.
func MaxImageBytes() int64 {
	n, err := strconv.ParseInt(os.Getenv("MAX_IMAGE_BYTES"), 10, 64)
	if err != nil || n <= 0 {
		return 10 << 20
	}
	return n
}

// ClassifierProvider returns the crop classifier provider.
// Valid values: http, mock
func ClassifierProvider() string {
	return stringOr("CLASSIFIER_PROVIDER", "http")
}

func ClassifierURL() string {
	return os.Getenv("CLASSIFIER_URL")
}

func ClassifierAPIKey() string {
	return os.Getenv("CLASSIFIER_API_KEY")
}

// APIKey is the optional bearer key guarding /v1. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return positiveInt("RATE_LIMIT_BURST", 20)
}

func CompatibilityCacheSize() int {
	return positiveInt("COMPATIBILITY_CACHE_SIZE", 256)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringOr("LOG_LEVEL", "info")
}
