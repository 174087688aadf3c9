package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string

	MongoURI string
	MongoDB  string

	GeminiAPIKey      string
	ClassifierTimeout time.Duration

	JWTSecret     string
	JWTExpiration time.Duration
	AdminUsername string
	AdminPassword string

	// AllowedGuildID, when set, restricts processing to a single guild.
	AllowedGuildID string

	HeartStart         int
	HeartPenaltyFlag   int
	HeartDailyBonus    int
	HeartAdvice        int
	HeartProblemSolved int

	LeaderboardLimit int

	TierTableFile   string
	ExemptionsFile  string
	RoleMembersFile string

	NotifyWebhookURL string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	// Best-effort: a missing .env is fine.
	_ = godotenv.Load()

	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "discord-guardian"),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		ClassifierTimeout: getEnvDuration("CLASSIFIER_TIMEOUT", 15*time.Second),

		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration: 24 * time.Hour,
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		AllowedGuildID: getEnv("ALLOWED_GUILD_ID", ""),

		HeartStart:         getEnvInt("HEART_START", 50),
		HeartPenaltyFlag:   getEnvInt("HEART_PENALTY_FLAG", 10),
		HeartDailyBonus:    getEnvInt("HEART_DAILY_BONUS", 5),
		HeartAdvice:        getEnvInt("HEART_ADVICE", 5),
		HeartProblemSolved: getEnvInt("HEART_PROBLEM_SOLVED", 10),

		LeaderboardLimit: getEnvInt("LEADERBOARD_LIMIT", 10),

		TierTableFile:   getEnv("TIER_TABLE_FILE", "tiers.json"),
		ExemptionsFile:  getEnv("EXEMPTIONS_FILE", "specialuser.json"),
		RoleMembersFile: getEnv("ROLE_MEMBERS_FILE", ""),

		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
