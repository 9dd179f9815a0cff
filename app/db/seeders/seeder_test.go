package seeders

import (
	"context"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDBSeedIsRepeatableForCategories(t *testing.T) {
	store := repotest.NewStore()
	repo := store.Repository()
	s := New(repo, store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.DBSeed(ctx, 2, nil))
	require.NoError(t, s.DBSeed(ctx, 1, nil))

	categories, err := repo.Categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 8)

	counts, err := repo.Categories.CountActiveProducts(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		assert.Equal(t, int64(3), counts[c.ID], c.Name)
	}
}
