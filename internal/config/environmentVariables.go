package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultLogLevel             = slog.LevelDebug
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	RateLimiterIdleTTL          = 10 * time.Minute

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //mcp tool calls wait on the model
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//per job deadline, covers one completion call
	JobTimeout        = 60 * time.Second
	CompletionTimeout = 45 * time.Second

	//shared transport for completion providers
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//llm
	ProviderGemini      = "gemini"
	ProviderAzureOpenAI = "azure-openai"
	GeminiModelName     = "gemini-2.5-flash-lite-preview-09-2025"
	AzureAPIVersion     = "2024-06-01"

	//uploads
	MaxUploadSizeMB   = 10
	UploadTempDirName = "temporary_data"

	//the ring of turns kept per chat
	SessionHistoryLimit = 20

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisSessionStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisSessionStoreTTL = 24 * time.Hour
	RedisPingTimeout     = 3 * time.Second
)

var AllowedUploadExtensions = []string{".txt", ".md", ".pdf", ".docx", ".rtf", ".odt"}

// Environment is everything read from the process environment (and .env) at startup.
type Environment struct {
	IsProd   bool
	LogLevel string

	ListenAddr     string
	FlowConfigPath string

	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string

	RedisAddr     string
	RedisPassword string

	AuthToken    string
	NoAuthBypass bool
}

// LoadEnvironment reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func LoadEnvironment() Environment {
	_ = godotenv.Load()

	return Environment{
		IsProd:   getEnv("APP_ENV", "development") == "production",
		LogLevel: getEnv("LOG_LEVEL", ""),

		ListenAddr:     getEnv("LISTEN_ADDR", ServerListenAddr),
		FlowConfigPath: getEnv("FLOW_CONFIG_PATH", ""),

		LLMProvider:     getEnv("LLM_PROVIDER", ProviderGemini),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", GeminiModelName),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", AzureAPIVersion),

		RedisAddr:     getEnv("REDIS_ADDR", RedisAddr),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AuthToken:    getEnv("API_AUTH_TOKEN", ""),
		NoAuthBypass: getBool("AUTH_BYPASS", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
