package cycles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

type memRepo struct {
	nextID int64
	cycles map[int64]Cycle
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, cycles: map[int64]Cycle{}}
}

func (m *memRepo) List(context.Context) ([]Cycle, error) {
	out := make([]Cycle, 0, len(m.cycles))
	for _, c := range m.cycles {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (Cycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return Cycle{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memRepo) Create(_ context.Context, c Cycle) (Cycle, error) {
	c.ID = m.nextID
	m.nextID++
	m.cycles[c.ID] = c
	return c, nil
}

func (m *memRepo) Update(_ context.Context, id int64, c Cycle) error {
	if _, ok := m.cycles[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	m.cycles[id] = c
	return nil
}

func (m *memRepo) SetOpen(_ context.Context, id int64, open bool) error {
	c, ok := m.cycles[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.IsOpen = open
	m.cycles[id] = c
	return nil
}

func validCycle() Cycle {
	return Cycle{
		Code:     "2026-I",
		Name:     "Semestre 2026-I",
		StartsOn: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateCycle(t *testing.T) {
	svc := NewService(newMemRepo())

	created, err := svc.Create(context.Background(), validCycle())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "2026-I", created.Code)
}

func TestCreateCycleValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	c := validCycle()
	c.Code = " "
	_, err := svc.Create(ctx, c)
	require.ErrorIs(t, err, shared.ErrValidation)

	c = validCycle()
	c.EndsOn = c.StartsOn
	_, err = svc.Create(ctx, c)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetOpen(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCycle())
	require.NoError(t, err)

	require.NoError(t, svc.SetOpen(ctx, created.ID, true))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, got.IsOpen)

	require.NoError(t, svc.SetOpen(ctx, created.ID, false))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsOpen)
}

func TestGetRejectsBadID(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}
