package importer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
	"github.com/portafolio-docente/portafolio-docente/jobs"
)

// Job states.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

const (
	jobKeyPrefix = "importer:job:"
	jobTTL       = 24 * time.Hour
	maxCSVBytes  = 1 << 20
)

// JobStatus is the progress record of one roster import, kept in Redis so
// both API instances and the worker see the same view.
type JobStatus struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Assigned  int       `json:"assigned"`
	Errors    []string  `json:"errors,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserUpserter is the slice of the user directory the importer needs. The
// boolean reports whether the account was freshly created.
type UserUpserter interface {
	UpsertByEmail(ctx context.Context, email, name string) (users.User, bool, error)
}

// RoleGranter assigns catalog roles to imported accounts.
type RoleGranter interface {
	Assign(ctx context.Context, userID int64, roleName string, assignedBy int64, notes string) (assignment.RoleAssignment, error)
}

// Enqueuer submits roster tasks to the queue.
type Enqueuer interface {
	EnqueueRosterImport(ctx context.Context, payload jobs.RosterImportPayload) (*asynq.TaskInfo, error)
}

// Service runs roster imports. Enqueue happens on the API side; Process runs
// inside the worker.
type Service struct {
	users  UserUpserter
	roles  RoleGranter
	queue  Enqueuer
	redis  *redis.Client
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(userStore UserUpserter, roles RoleGranter, queue Enqueuer, redisClient *redis.Client, logger *slog.Logger) *Service {
	return &Service{users: userStore, roles: roles, queue: queue, redis: redisClient, logger: logger}
}

// Enqueue validates the CSV shape and queues the import. The parse runs here
// too, so obviously broken files fail fast instead of from the worker.
func (s *Service) Enqueue(ctx context.Context, requestedBy int64, csvData string) (JobStatus, error) {
	if strings.TrimSpace(csvData) == "" {
		return JobStatus{}, shared.Validation("empty roster upload")
	}
	if len(csvData) > maxCSVBytes {
		return JobStatus{}, shared.Validation("roster exceeds 1MB limit")
	}
	rows, _, err := ParseRoster(csvData)
	if err != nil {
		return JobStatus{}, err
	}
	if len(rows) == 0 {
		return JobStatus{}, shared.Validation("roster contains no valid rows")
	}

	status := JobStatus{
		JobID:     uuid.NewString(),
		Status:    JobQueued,
		Total:     len(rows),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.saveStatus(ctx, status); err != nil {
		return JobStatus{}, err
	}
	_, err = s.queue.EnqueueRosterImport(ctx, jobs.RosterImportPayload{
		JobID:       status.JobID,
		RequestedBy: requestedBy,
		CSV:         csvData,
	})
	if err != nil {
		status.Status = JobFailed
		status.Errors = append(status.Errors, "enqueue failed")
		_ = s.saveStatus(ctx, status)
		return JobStatus{}, err
	}
	return status, nil
}

// Status looks up a job by id.
func (s *Service) Status(ctx context.Context, jobID string) (JobStatus, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return JobStatus{}, shared.Validation("invalid job id")
	}
	raw, err := s.redis.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return JobStatus{}, shared.ErrNotFound
	}
	if err != nil {
		return JobStatus{}, err
	}
	var status JobStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return JobStatus{}, err
	}
	return status, nil
}

// HandleTask processes roster:import tasks inside the worker.
func (s *Service) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.RosterImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return s.Process(ctx, payload)
}

// Process imports the roster: every row becomes an active account holding
// the teacher role. Existing accounts are reactivated, existing role grants
// are kept as-is. Row-level failures are recorded and do not abort the run.
func (s *Service) Process(ctx context.Context, payload jobs.RosterImportPayload) error {
	rows, rowErrs, err := ParseRoster(payload.CSV)
	if err != nil {
		s.markFailed(ctx, payload.JobID, err.Error())
		return err
	}

	status := JobStatus{
		JobID:  payload.JobID,
		Status: JobRunning,
		Total:  len(rows),
	}
	for _, re := range rowErrs {
		status.Errors = append(status.Errors, re.String())
	}
	status.UpdatedAt = time.Now().UTC()
	_ = s.saveStatus(ctx, status)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			s.markFailed(ctx, payload.JobID, "import cancelled")
			return err
		}
		user, created, err := s.users.UpsertByEmail(ctx, row.Email, row.Name)
		if err != nil {
			status.Errors = append(status.Errors, row.Email+": "+err.Error())
			status.Processed++
			continue
		}
		if created {
			status.Created++
		} else {
			status.Updated++
		}
		_, err = s.roles.Assign(ctx, user.ID, catalog.RoleTeacher, payload.RequestedBy, "roster import "+payload.JobID)
		switch {
		case err == nil:
			status.Assigned++
		case errors.Is(err, shared.ErrDuplicateRole):
			// Already a teacher, nothing to do.
		default:
			status.Errors = append(status.Errors, row.Email+": "+err.Error())
		}
		status.Processed++
		if status.Processed%50 == 0 {
			status.UpdatedAt = time.Now().UTC()
			_ = s.saveStatus(ctx, status)
		}
	}

	status.Status = JobDone
	status.UpdatedAt = time.Now().UTC()
	if err := s.saveStatus(ctx, status); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("roster import finished",
			slog.String("job_id", payload.JobID),
			slog.Int("total", status.Total),
			slog.Int("created", status.Created),
			slog.Int("updated", status.Updated),
			slog.Int("assigned", status.Assigned),
			slog.Int("errors", len(status.Errors)),
		)
	}
	return nil
}

func (s *Service) saveStatus(ctx context.Context, status JobStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKeyPrefix+status.JobID, raw, jobTTL).Err()
}

func (s *Service) markFailed(ctx context.Context, jobID, reason string) {
	status, err := s.Status(ctx, jobID)
	if err != nil {
		status = JobStatus{JobID: jobID}
	}
	status.Status = JobFailed
	status.Errors = append(status.Errors, reason)
	status.UpdatedAt = time.Now().UTC()
	if err := s.saveStatus(ctx, status); err != nil && s.logger != nil {
		s.logger.Warn("import status save", slog.Any("error", err))
	}
}
