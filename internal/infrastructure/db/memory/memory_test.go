package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

func newTender(number string, submission time.Time) *domain.Tender {
	return &domain.Tender{
		TenderNumber:   number,
		ClientName:     "Acme",
		BriefingDate:   submission.AddDate(0, 0, -7),
		SubmissionDate: submission,
		Venue:          "HQ",
	}
}

func TestTenderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewTenderRepository()

	created, err := repo.Create(ctx, newTender("TND-1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, *created, *got)

	venue := "Boardroom"
	updated, err := repo.Update(ctx, created.ID, domain.TenderPatch{Venue: &venue})
	require.NoError(t, err)
	require.Equal(t, "Boardroom", updated.Venue)
	require.Equal(t, "Acme", updated.ClientName)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrTenderNotFound)
	require.NoError(t, repo.Delete(ctx, created.ID))
}

func TestTenderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewTenderRepository()
	created, err := repo.Create(ctx, newTender("TND-1", time.Now()))
	require.NoError(t, err)

	created.ClientName = "mutated"
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.ClientName)
}

func TestTenderRepository_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewTenderRepository()

	first, err := repo.Create(ctx, newTender("TND-1", time.Now()))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTender("TND-1", time.Now()))
	require.ErrorIs(t, err, domain.ErrTenderNumberTaken)

	second, err := repo.Create(ctx, newTender("TND-2", time.Now()))
	require.NoError(t, err)
	taken := "TND-1"
	_, err = repo.Update(ctx, second.ID, domain.TenderPatch{TenderNumber: &taken})
	require.ErrorIs(t, err, domain.ErrTenderNumberTaken)

	// Keeping one's own number is fine.
	_, err = repo.Update(ctx, first.ID, domain.TenderPatch{TenderNumber: &taken})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestTenderRepository_ListOrdersBySubmission(t *testing.T) {
	ctx := context.Background()
	repo := NewTenderRepository()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, number := range []string{"late", "early", "middle"} {
		offset := map[int]int{0: 20, 1: 1, 2: 10}[i]
		_, err := repo.Create(ctx, newTender(number, base.AddDate(0, 0, offset)))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "early", list[0].TenderNumber)
	require.Equal(t, "middle", list[1].TenderNumber)
	require.Equal(t, "late", list[2].TenderNumber)
}

func TestTenderRepository_UpdateUnknown(t *testing.T) {
	venue := "x"
	_, err := NewTenderRepository().Update(context.Background(), "missing", domain.TenderPatch{Venue: &venue})
	require.ErrorIs(t, err, domain.ErrTenderNotFound)
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	admin := true
	updated, err := repo.Update(ctx, created.ID, domain.UserPatch{IsAdmin: &admin})
	require.NoError(t, err)
	require.True(t, updated.IsAdmin)
	require.Equal(t, "h", updated.PasswordHash)

	_, err = repo.Create(ctx, &domain.User{Username: "alice"})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ListSortedByUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := repo.Create(ctx, &domain.User{Username: name})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol"}, []string{list[0].Username, list[1].Username, list[2].Username})
}

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := domain.Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)

	require.NoError(t, store.Touch(ctx, "s1", now.Add(2*time.Hour)))
	now = now.Add(90 * time.Minute)
	_, err = store.Get(ctx, "s1")
	require.NoError(t, err, "touched session should still be live")

	now = now.Add(time.Hour)
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.ErrorIs(t, store.Touch(ctx, "s1", now.Add(time.Hour)), domain.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	require.NoError(t, store.Save(ctx, domain.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err := store.Get(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestSessionStore_GetKeepsSessionTouchedConcurrently(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)
	require.NoError(t, store.Save(ctx, domain.Session{ID: "s1", UserID: "u1", ExpiresAt: start.Add(time.Hour)}))

	// The first clock read happens after Get has seen the stale copy; extend
	// the session at that point, as a concurrent Touch would.
	touched := false
	store.now = func() time.Time {
		if !touched {
			touched = true
			require.NoError(t, store.Save(ctx, domain.Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
		}
		return now
	}

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))

	_, err = store.Get(ctx, "s1")
	require.NoError(t, err, "extended session must not be deleted")
}
