package app

import (
	"strings"
	"time"

	"github.com/yungbote/mentalgym-backend/internal/data/db"
	httpMW "github.com/yungbote/mentalgym-backend/internal/http/middleware"
	"github.com/yungbote/mentalgym-backend/internal/jobs/worker"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/openai"
	"github.com/yungbote/mentalgym-backend/internal/platform/redis"
	"github.com/yungbote/mentalgym-backend/internal/scheduler"
	"github.com/yungbote/mentalgym-backend/internal/temporalx"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string

	HTTPAddr        string
	ShutdownTimeout time.Duration
	AutoMigrate     bool
	PlansFile       string

	DB            db.Config
	Redis         redis.Config
	OpenAI        openai.Config
	Temporal      temporalx.Config
	Scheduler     scheduler.Config
	Worker        worker.Config
	Auth          httpMW.AuthConfig
	CORSOrigins   []string
	Insights      insights.Config
	Training      training.Config
	Notifications notifications.Config
}

func LoadConfig() Config {
	port := strings.TrimPrefix(envutil.String("PORT", "8080"), ":")
	return Config{
		ServiceName:     envutil.String("SERVICE_NAME", "mentalgym-backend"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		HTTPAddr:        ":" + port,
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AutoMigrate:     envutil.Bool("DB_AUTO_MIGRATE", true),
		PlansFile:       envutil.String("PLANS_FILE", ""),

		DB:            db.ConfigFromEnv(),
		Redis:         redis.ConfigFromEnv(),
		OpenAI:        openai.ConfigFromEnv(),
		Temporal:      temporalx.LoadConfig(),
		Scheduler:     scheduler.ConfigFromEnv(),
		Worker:        worker.ConfigFromEnv(),
		Auth:          httpMW.AuthConfigFromEnv(),
		CORSOrigins:   httpMW.CORSOriginsFromEnv(),
		Insights:      insights.ConfigFromEnv(),
		Training:      training.ConfigFromEnv(),
		Notifications: notifications.ConfigFromEnv(),
	}
}
