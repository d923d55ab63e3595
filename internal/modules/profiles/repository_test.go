package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/expenseoracle/oracle/internal/domain"
	testingutil "github.com/expenseoracle/oracle/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.ProfileRepository = (*Repository)(nil)

func setup(t *testing.T) (*Repository, int64) {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t, "oracle")
	t.Cleanup(cleanup)

	result, err := db.Conn().Exec("INSERT INTO users (email, created_at) VALUES ('p@example.com', 0)")
	require.NoError(t, err)
	userID, err := result.LastInsertId()
	require.NoError(t, err)

	return NewRepository(db.Conn(), zerolog.Nop()), userID
}

func TestRepository_GetProfile_NotFound(t *testing.T) {
	repo, userID := setup(t)

	_, err := repo.GetProfile(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRepository_UpsertAndGet(t *testing.T) {
	repo, userID := setup(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, userID, testingutil.NewProfileFixture()))

	p, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, testingutil.NewProfileFixture(), p)

	updated := p
	updated.Income = 7200
	updated.RiskTolerance = domain.RiskAggressive
	require.NoError(t, repo.Upsert(ctx, userID, updated))

	p, err = repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, p.Income)
	assert.Equal(t, domain.RiskAggressive, p.RiskTolerance)
}

func TestRepository_UnknownToleranceStoredAsModerate(t *testing.T) {
	repo, userID := setup(t)
	ctx := context.Background()

	p := testingutil.NewProfileFixture()
	p.RiskTolerance = "yolo"
	require.NoError(t, repo.Upsert(ctx, userID, p))

	got, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskModerate, got.RiskTolerance)
}

func TestGetOrDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("missing profile falls back", func(t *testing.T) {
		repo := testingutil.NewMockProfileRepository()
		p, err := GetOrDefault(ctx, repo, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultProfile(), p)
		assert.Equal(t, 5000.0, p.Income)
	})

	t.Run("stored profile wins", func(t *testing.T) {
		repo := testingutil.NewMockProfileRepository()
		repo.SetProfile(1, testingutil.NewProfileFixture())
		p, err := GetOrDefault(ctx, repo, 1)
		require.NoError(t, err)
		assert.Equal(t, 3000.0, p.MonthlyBudget)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		repo := testingutil.NewMockProfileRepository()
		boom := errors.New("db down")
		repo.SetError(boom)
		_, err := GetOrDefault(ctx, repo, 1)
		assert.ErrorIs(t, err, boom)
	})
}
