package documents

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// CacheBumper invalidates cached report snapshots after a verdict changes
// the compliance numbers.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service coordinates the document workflow.
type Service struct {
	repo   Repository
	audit  shared.Recorder
	cache  CacheBumper
	logger *slog.Logger
}

// NewService builds a Service. audit and cache may be nil in tests.
func NewService(repo Repository, audit shared.Recorder, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

// Upload registers the metadata of a freshly stored file. The caller becomes
// the owner and the document starts out pending.
func (s *Service) Upload(ctx context.Context, ownerID, subjectID int64, title, fileName string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, shared.Validation("document title is required")
	}
	if subjectID <= 0 {
		return Document{}, shared.Validation("document subject is required")
	}
	if strings.TrimSpace(fileName) == "" {
		return Document{}, shared.Validation("file name is required")
	}
	doc := Document{
		OwnerID:   ownerID,
		SubjectID: subjectID,
		Title:     title,
		FileKey:   uuid.NewString(),
		FileName:  fileName,
		Status:    StatusPending,
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return Document{}, err
	}
	s.recordAudit(ctx, ownerID, "document.upload", created.ID, map[string]any{
		"subject_id": created.SubjectID,
		"file_key":   created.FileKey,
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	if id <= 0 {
		return Document{}, shared.Validation("invalid document ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Document, error) {
	if filters.Status != "" && filters.Status != StatusPending && filters.Status != StatusVerified && filters.Status != StatusRejected {
		return nil, shared.Validation("unknown document status filter")
	}
	return s.repo.List(ctx, filters)
}

// OwnerOf reports who owns a document. Used by ownership gates on the routes.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return doc.OwnerID, nil
}

// Verify settles a pending document. Approving requires no observation;
// rejecting requires one so the owner knows what to fix. A verifier can
// never settle their own upload.
func (s *Service) Verify(ctx context.Context, verifierID, docID int64, approve bool, observation string) (Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID == verifierID {
		return Document{}, shared.Forbidden()
	}
	if doc.Status != StatusPending {
		return Document{}, shared.Validation("document is not pending review")
	}
	observation = strings.TrimSpace(observation)
	status := StatusVerified
	if !approve {
		status = StatusRejected
		if observation == "" {
			return Document{}, shared.Validation("rejection requires an observation")
		}
	}
	if err := s.repo.SetVerdict(ctx, docID, verifierID, status, observation); err != nil {
		return Document{}, err
	}
	s.recordAudit(ctx, verifierID, "document.verify", docID, map[string]any{
		"status":      status,
		"observation": observation,
	})
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("report cache bump failed", slog.String("error", err.Error()))
		}
	}
	return s.repo.Get(ctx, docID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, docID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "document",
		EntityID: strconv.FormatInt(docID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
