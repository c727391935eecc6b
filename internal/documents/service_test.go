package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

type memRepo struct {
	nextID int64
	docs   map[int64]Document
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, docs: map[int64]Document{}}
}

func (m *memRepo) Get(_ context.Context, id int64) (Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return d, nil
}

func (m *memRepo) List(_ context.Context, filters ListFilters) ([]Document, error) {
	var out []Document
	for _, d := range m.docs {
		if filters.OwnerID > 0 && d.OwnerID != filters.OwnerID {
			continue
		}
		if filters.SubjectID > 0 && d.SubjectID != filters.SubjectID {
			continue
		}
		if filters.Status != "" && d.Status != filters.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, d Document) (Document, error) {
	d.ID = m.nextID
	m.nextID++
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.docs[d.ID] = d
	return d, nil
}

func (m *memRepo) SetVerdict(_ context.Context, id int64, verifierID int64, status, observation string) error {
	d, ok := m.docs[id]
	if !ok || d.Status != StatusPending {
		return shared.Validation("document is not pending review")
	}
	now := time.Now()
	d.Status = status
	d.Observation = observation
	d.VerifiedBy = &verifierID
	d.VerifiedAt = &now
	m.docs[id] = d
	return nil
}

type memAudit struct {
	logs []shared.AuditLog
}

func (m *memAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type memBumper struct {
	bumps int
}

func (m *memBumper) Bump(context.Context) error {
	m.bumps++
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *memAudit, *memBumper) {
	t.Helper()
	repo := newMemRepo()
	audit := &memAudit{}
	bumper := &memBumper{}
	return NewService(repo, audit, bumper, nil), repo, audit, bumper
}

func TestUploadStartsPending(t *testing.T) {
	svc, _, audit, _ := newTestService(t)

	doc, err := svc.Upload(context.Background(), 7, 3, "Syllabus 2026-I", "syllabus.pdf")
	require.NoError(t, err)
	require.Equal(t, StatusPending, doc.Status)
	require.Equal(t, int64(7), doc.OwnerID)
	require.NotEmpty(t, doc.FileKey)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "document.upload", audit.logs[0].Action)
}

func TestUploadValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), 7, 3, "  ", "syllabus.pdf")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Upload(context.Background(), 7, 0, "Syllabus", "syllabus.pdf")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Upload(context.Background(), 7, 3, "Syllabus", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestVerifyApprove(t *testing.T) {
	svc, _, audit, bumper := newTestService(t)
	doc, err := svc.Upload(context.Background(), 7, 3, "Syllabus", "syllabus.pdf")
	require.NoError(t, err)

	settled, err := svc.Verify(context.Background(), 42, doc.ID, true, "")
	require.NoError(t, err)
	require.Equal(t, StatusVerified, settled.Status)
	require.NotNil(t, settled.VerifiedBy)
	require.Equal(t, int64(42), *settled.VerifiedBy)
	require.Equal(t, 1, bumper.bumps)
	require.Equal(t, "document.verify", audit.logs[len(audit.logs)-1].Action)
}

func TestVerifyRejectRequiresObservation(t *testing.T) {
	svc, _, _, bumper := newTestService(t)
	doc, err := svc.Upload(context.Background(), 7, 3, "Syllabus", "syllabus.pdf")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), 42, doc.ID, false, "   ")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, bumper.bumps)

	settled, err := svc.Verify(context.Background(), 42, doc.ID, false, "missing signatures")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, settled.Status)
	require.Equal(t, "missing signatures", settled.Observation)
}

func TestVerifyOwnCommitForbidden(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	doc, err := svc.Upload(context.Background(), 7, 3, "Syllabus", "syllabus.pdf")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), 7, doc.ID, true, "")
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestVerifyOnlyOnce(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	doc, err := svc.Upload(context.Background(), 7, 3, "Syllabus", "syllabus.pdf")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), 42, doc.ID, true, "")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), 42, doc.ID, false, "changed my mind")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestVerifyMissingDocument(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Verify(context.Background(), 42, 999, true, "")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListStatusFilter(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.List(context.Background(), ListFilters{Status: "archived"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.List(context.Background(), ListFilters{Status: StatusPending})
	require.NoError(t, err)
}
