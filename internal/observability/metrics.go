package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// Metrics methods are safe on a nil receiver so callers never check Enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec
	analyses    *CounterVec
	emails      *CounterVec
	weeklyRuns  *CounterVec
	jobs        *CounterVec
	jobLatency  *HistogramVec
	sessions    *CounterVec
	levelUps    *CounterVec
	scoring     *CounterVec
	batchErrors *CounterVec
	queueDepth  *GaugeVec
	redisUp     *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("mg_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("mg_api_request_duration_seconds", "API latency in seconds.", []string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}),
		apiInflight: NewGaugeVec("mg_api_inflight_requests", "In-flight API requests.", nil),
		analyses:    NewCounterVec("mg_blind_spot_analyses_total", "Blind spot page requests by gate outcome.", []string{"gate"}),
		emails:      NewCounterVec("mg_emails_total", "Blind spot emails by type and outcome.", []string{"type", "outcome"}),
		weeklyRuns:  NewCounterVec("mg_weekly_report_runs_total", "Weekly report batch runs by status.", []string{"status"}),
		jobs:        NewCounterVec("mg_jobs_total", "Background jobs by type and outcome.", []string{"job_type", "outcome"}),
		jobLatency: NewHistogramVec("mg_job_duration_seconds", "Background job run time.", []string{"job_type"},
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}),
		sessions:    NewCounterVec("mg_training_sessions_total", "Training session transitions.", []string{"transition"}),
		levelUps:    NewCounterVec("mg_level_ups_total", "Level ups by new level.", []string{"level"}),
		scoring:     NewCounterVec("mg_drill_scores_total", "Drill scoring outcomes by drill type.", []string{"drill_type", "outcome"}),
		batchErrors: NewCounterVec("mg_batch_errors_total", "Errors reported from batch work.", []string{"operation"}),
		queueDepth:  NewGaugeVec("mg_job_queue_depth", "Job runs by status.", []string{"status"}),
		redisUp:     NewGaugeVec("mg_redis_up", "Redis reachability (1 up).", nil),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) IncAnalysis(gate string) {
	if m == nil {
		return
	}
	m.analyses.Inc(gate)
}

func (m *Metrics) IncEmail(emailType, outcome string) {
	if m == nil {
		return
	}
	m.emails.Inc(emailType, outcome)
}

func (m *Metrics) EmailCount(emailType, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.emails.Value(emailType, outcome)
}

func (m *Metrics) IncWeeklyRun(status string) {
	if m == nil {
		return
	}
	m.weeklyRuns.Inc(status)
}

func (m *Metrics) ObserveJob(jobType, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobs.Inc(jobType, outcome)
	m.jobLatency.Observe(dur.Seconds(), jobType)
}

func (m *Metrics) IncSession(transition string) {
	if m == nil {
		return
	}
	m.sessions.Inc(transition)
}

func (m *Metrics) IncLevelUp(level int) {
	if m == nil {
		return
	}
	m.levelUps.Inc(strconv.Itoa(level))
}

func (m *Metrics) IncScoring(drillType, outcome string) {
	if m == nil {
		return
	}
	m.scoring.Inc(drillType, outcome)
}

func (m *Metrics) IncBatchError(operation string) {
	if m == nil {
		return
	}
	m.batchErrors.Inc(operation)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, p := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.analyses, m.emails, m.weeklyRuns,
		m.jobs, m.jobLatency, m.sessions, m.levelUps, m.scoring, m.batchErrors, m.queueDepth, m.redisUp,
	} {
		if err := p.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// QueueCounter reports job runs per status.
type QueueCounter func(ctx context.Context) (map[string]int64, error)

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, counter QueueCounter) {
	if m == nil || counter == nil {
		return
	}
	interval := envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				counts, err := counter(ctx)
				if err != nil {
					log.Warn("metrics: job queue depth query failed", "error", err)
					continue
				}
				for status, n := range counts {
					m.queueDepth.Set(float64(n), status)
				}
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					log.Warn("metrics: redis ping failed", "error", err)
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
