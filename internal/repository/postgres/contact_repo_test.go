package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/repository/postgres"
	"github.com/dom/contacts-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestContactRepository_GetByOwnerAndID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewContactRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	contact := testutil.NewContactBuilder(owner.ID).Build(t, testDB.DB)

	got, err := repo.GetByOwnerAndID(ctx, owner.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, got.ID)

	// Scoped read: someone else's id behaves like a missing row
	_, err = repo.GetByOwnerAndID(ctx, other.ID, contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContactRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewContactRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	contact := testutil.NewContactBuilder(owner.ID).Build(t, testDB.DB)

	// Non-owner delete is a not-found and leaves the row alone
	_, err := repo.Delete(ctx, other.ID, contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted, err := repo.Delete(ctx, owner.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, deleted.ID)

	_, err = repo.GetByOwnerAndID(ctx, owner.ID, contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContactRepository_CountByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewContactRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		testutil.NewContactBuilder(owner.ID).Build(t, testDB.DB)
	}
	testutil.NewContactBuilder(other.ID).Build(t, testDB.DB)

	count, err := repo.CountByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestContactRepository_SearchByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewContactRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewContactBuilder(owner.ID).
		WithName("John", "Doe").
		WithEmail("john@x.com").
		Build(t, testDB.DB)
	testutil.NewContactBuilder(owner.ID).
		WithName("Jane", "Smith").
		WithEmail("jane@x.com").
		Build(t, testDB.DB)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "first name substring", query: "Joh", want: 1},
		{name: "last name substring", query: "mit", want: 1},
		{name: "email substring", query: "@x.com", want: 2},
		{name: "LIKE is case sensitive", query: "JOHN", want: 0},
		{name: "no match", query: "zzz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts, err := repo.SearchByOwner(ctx, owner.ID, tt.query)
			require.NoError(t, err)
			assert.Len(t, contacts, tt.want)
		})
	}
}

func TestContactRepository_BirthdaysInWindow(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewContactRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	june28 := testutil.NewContactBuilder(owner.ID).
		WithBirthday(date(1991, time.June, 28)).
		Build(t, testDB.DB)
	testutil.NewContactBuilder(owner.ID).
		WithBirthday(date(1988, time.July, 3)).
		Build(t, testDB.DB)
	jan2 := testutil.NewContactBuilder(owner.ID).
		WithBirthday(date(1975, time.January, 2)).
		Build(t, testDB.DB)
	dec30 := testutil.NewContactBuilder(owner.ID).
		WithBirthday(date(2000, time.December, 30)).
		Build(t, testDB.DB)

	t.Run("plain window", func(t *testing.T) {
		// today = 2024-06-25, window through 2024-07-02:
		// 06-28 in, 07-03 out (day eight)
		contacts, err := repo.BirthdaysInWindow(ctx, owner.ID, date(2024, time.June, 25), date(2024, time.July, 2))
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, june28.ID, contacts[0].ID)
	})

	t.Run("window crossing new year", func(t *testing.T) {
		// today = 2024-12-29, window through 2025-01-05: the stored years
		// (2000, 1975) are irrelevant, only month/day counts
		contacts, err := repo.BirthdaysInWindow(ctx, owner.ID, date(2024, time.December, 29), date(2025, time.January, 5))
		require.NoError(t, err)
		require.Len(t, contacts, 2)
		assert.Equal(t, jan2.ID, contacts[0].ID)
		assert.Equal(t, dec30.ID, contacts[1].ID)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		contacts, err := repo.BirthdaysInWindow(ctx, owner.ID, date(2024, time.June, 28), date(2024, time.June, 28))
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, june28.ID, contacts[0].ID)
	})
}
