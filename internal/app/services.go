package app

import (
	"fmt"

	apphttp "github.com/yungbote/mentalgym-backend/internal/http"
	httpH "github.com/yungbote/mentalgym-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentalgym-backend/internal/http/middleware"
	"github.com/yungbote/mentalgym-backend/internal/jobs/pipeline/drill_score"
	"github.com/yungbote/mentalgym-backend/internal/jobs/pipeline/teaser_email"
	jobrt "github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/jobs/worker"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/mail"
	"github.com/yungbote/mentalgym-backend/internal/platform/openai"
	"github.com/yungbote/mentalgym-backend/internal/platform/redis"
	"github.com/yungbote/mentalgym-backend/internal/scheduler"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

type Services struct {
	Jobs          services.JobService
	Insights      insights.Usecases
	Training      training.Usecases
	Notifications notifications.Usecases

	Registry  *jobrt.Registry
	Worker    *worker.Worker
	Scheduler *scheduler.Scheduler
	Server    *apphttp.Server
}

func wireServices(a *App) (Services, error) {
	log := a.Log
	theDB := a.DB.DB()
	r := a.Repos

	var s Services
	s.Registry = jobrt.NewRegistry()
	s.Jobs = services.NewJobService(log, r.JobRun, s.Registry)

	var scorer training.Scorer
	if a.Cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(log, a.Cfg.OpenAI)
		if err != nil {
			return s, fmt.Errorf("init openai: %w", err)
		}
		if scorer, err = training.NewAIScorer(client); err != nil {
			return s, fmt.Errorf("init scorer: %w", err)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set; drill_score jobs will fail until it is")
	}

	sender, err := mail.NewFromEnv(log)
	if err != nil {
		return s, fmt.Errorf("init mail: %w", err)
	}

	s.Insights = insights.New(insights.UsecasesDeps{
		DB:           theDB,
		Log:          log,
		Config:       a.Cfg.Insights,
		Plans:        a.Plans,
		Users:        r.User,
		Sessions:     r.TrainingSession,
		Scores:       r.DrillScore,
		Dimensions:   r.SkillDimension,
		Observations: r.Observation,
	})
	s.Training = training.New(training.UsecasesDeps{
		DB:          theDB,
		Log:         log,
		Config:      a.Cfg.Training,
		Plans:       a.Plans,
		Jobs:        s.Jobs,
		Scorer:      scorer,
		Users:       r.User,
		Modes:       r.PracticeMode,
		Sessions:    r.TrainingSession,
		Progress:    r.UserModeProgress,
		Completions: r.SessionCompletion,
		Usage:       r.ExchangeUsage,
		Dimensions:  r.SkillDimension,
		Scores:      r.DrillScore,
	})
	s.Notifications = notifications.New(notifications.UsecasesDeps{
		DB:       theDB,
		Log:      log,
		Config:   a.Cfg.Notifications,
		Plans:    a.Plans,
		Mail:     sender,
		Analyzer: s.Insights,
		Users:    r.User,
		Emails:   r.BlindSpotEmail,
	})

	for _, h := range []jobrt.Handler{
		drill_score.New(log, s.Training),
		teaser_email.New(log, s.Notifications),
	} {
		if err := s.Registry.Register(h); err != nil {
			return s, err
		}
	}
	s.Worker = worker.NewWorker(theDB, log, r.JobRun, s.Registry, a.Cfg.Worker)
	s.Scheduler = scheduler.New(log, a.Cfg.Scheduler, s.Notifications, redis.NewLocker(a.Redis))

	auth, err := httpMW.NewAuthMiddleware(log, a.Cfg.Auth)
	if err != nil {
		return s, err
	}
	s.Server = apphttp.NewServer(apphttp.RouterConfig{
		Log:                log,
		ServiceName:        a.Cfg.ServiceName,
		CORSOrigins:        a.Cfg.CORSOrigins,
		Tracing:            envutil.Bool("OTEL_ENABLED", false),
		Metrics:            a.Metrics,
		AuthMiddleware:     auth,
		HealthHandler:      httpH.NewHealthHandler(theDB),
		InsightsHandler:    httpH.NewInsightsHandler(s.Insights),
		SessionHandler:     httpH.NewSessionHandler(s.Training),
		PreferencesHandler: httpH.NewPreferencesHandler(s.Notifications),
		JobHandler:         httpH.NewJobHandler(s.Jobs),
	})
	return s, nil
}
