package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/utils"
)

const ReauthJobName = "reauthenticate"

type Authenticator interface {
	AuthenticateStored(ctx context.Context) (eventmodels.SessionToken, error)
}

// ScheduledJob runs once per calendar day when the wall clock in Location
// reaches At.
type ScheduledJob struct {
	Name     string
	At       string
	Location *time.Location
	NextRun  time.Time
	LastRun  time.Time
	hour     int
	minute   int
}

// ReauthScheduler refreshes the session token once a day. A failed refresh
// is logged and retried on the next day's slot.
type ReauthScheduler struct {
	wg           *sync.WaitGroup
	auth         Authenticator
	at           string
	location     *time.Location
	pollInterval time.Duration
	now          func() time.Time
	runs         metric.Int64Counter

	mu   sync.Mutex
	jobs []*ScheduledJob
}

func NewReauthScheduler(wg *sync.WaitGroup, auth Authenticator, at string, location *time.Location, pollInterval time.Duration) (*ReauthScheduler, error) {
	if _, _, err := utils.ParseClock(at); err != nil {
		return nil, fmt.Errorf("NewReauthScheduler: %w", err)
	}

	if location == nil {
		return nil, fmt.Errorf("NewReauthScheduler: location is required")
	}

	if pollInterval <= 0 {
		return nil, fmt.Errorf("NewReauthScheduler: poll interval must be positive")
	}

	runs, err := otel.GetMeterProvider().Meter("worker").Int64Counter("reauth.runs",
		metric.WithDescription("scheduled reauthentication attempts"))
	if err != nil {
		return nil, fmt.Errorf("NewReauthScheduler: failed to create counter: %w", err)
	}

	return &ReauthScheduler{
		wg:           wg,
		auth:         auth,
		at:           at,
		location:     location,
		pollInterval: pollInterval,
		now:          time.Now,
		runs:         runs,
	}, nil
}

// Setup clears any existing schedule and installs the single daily job.
// Calling it again yields the same one-job schedule.
func (s *ReauthScheduler) Setup(now time.Time) {
	hour, minute, _ := utils.ParseClock(s.at)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = []*ScheduledJob{
		{
			Name:     ReauthJobName,
			At:       s.at,
			Location: s.location,
			NextRun:  utils.NextDailyOccurrence(now, hour, minute, s.location),
			hour:     hour,
			minute:   minute,
		},
	}

	log.Infof("token auto-refresh scheduled daily at %s %s, next run %s", s.at, s.location, s.jobs[0].NextRun.Format(time.RFC3339))
}

func (s *ReauthScheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = nil
}

// Jobs returns a copy of the current schedule.
func (s *ReauthScheduler) Jobs() []ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]ScheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}

	return jobs
}

func (s *ReauthScheduler) dueJobs(now time.Time) []*ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*ScheduledJob
	for _, j := range s.jobs {
		if !now.Before(j.NextRun) {
			j.LastRun = now
			j.NextRun = utils.NextDailyOccurrence(now, j.hour, j.minute, j.Location)
			due = append(due, j)
		}
	}

	return due
}

// RunPending fires every job whose slot has been reached and returns how many ran.
func (s *ReauthScheduler) RunPending(ctx context.Context, now time.Time) int {
	due := s.dueJobs(now)

	for _, j := range due {
		s.reauthenticate(ctx, j)
	}

	return len(due)
}

func (s *ReauthScheduler) reauthenticate(ctx context.Context, job *ScheduledJob) {
	logger := log.WithField("job", job.Name)
	logger.Info("scheduled reauthentication starting")

	token, err := s.auth.AuthenticateStored(ctx)
	if err != nil {
		s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "error")))
		logger.Errorf("scheduled reauthentication failed, next attempt %s: %v", job.NextRun.Format(time.RFC3339), err)
		return
	}

	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	logger.Infof("scheduled reauthentication succeeded, token %s", token.Prefix())
}

// Start installs the schedule and polls it until ctx is cancelled.
func (s *ReauthScheduler) Start(ctx context.Context) {
	s.Setup(s.now())

	s.wg.Add(1)

	ticker := time.NewTicker(s.pollInterval)

	log.Info("starting ReauthScheduler")

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping ReauthScheduler")
				return
			case <-ticker.C:
				s.RunPending(ctx, s.now())
			}
		}
	}()
}
