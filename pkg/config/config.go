package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	PostgresConnStr string `envconfig:"POSTGRES_CONN_STR" required:"true"`
	PostStore       string `envconfig:"POST_STORE" default:"postgres"`
	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"instaclone"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"supersecretjwtkey"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"72h"`

	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`

	MediaBackend string `envconfig:"MEDIA_BACKEND" default:"local"`
	MediaDir     string `envconfig:"MEDIA_DIR" default:"./media"`
	MediaBaseURL string `envconfig:"MEDIA_BASE_URL" default:"/media"`
	S3Bucket     string `envconfig:"S3_BUCKET"`
	S3Region     string `envconfig:"S3_REGION" default:"us-east-1"`

	MetricsPort   string  `envconfig:"METRICS_PORT" default:"9090"`
	AuthRateLimit float64 `envconfig:"AUTH_RATE_LIMIT" default:"5"`

	FeedPadThreshold int `envconfig:"FEED_PAD_THRESHOLD" default:"5"`
	FeedPadSize      int `envconfig:"FEED_PAD_SIZE" default:"10"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) UseMongoPosts() bool {
	return c.PostStore == "mongo"
}
