package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/tablepos/pkg/logger"
	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	"github.com/ghuser/tablepos/services/menu/domain/models"
	"github.com/ghuser/tablepos/services/menu/infrastructure/persistence/memory"
)

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(memory.NewMenuRepository(), logger.Nop())
	n, err := c.SeedDefaults(context.Background())
	require.NoError(t, err)
	require.Equal(t, 16, n)
	return c
}

func TestCatalog_SeedDefaults_OnlyWhenEmpty(t *testing.T) {
	c := seededCatalog(t)

	n, err := c.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "second seed must be a no-op")

	all, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 16)
}

func TestCatalog_Lookup(t *testing.T) {
	c := seededCatalog(t)

	e, err := c.Lookup(context.Background(), "F1")
	require.NoError(t, err)
	assert.Equal(t, "Hamburger", e.Name)
	assert.True(t, e.UnitPrice.Equal(decimal.RequireFromString("12.99")))

	_, err = c.Lookup(context.Background(), "Z9")
	assert.True(t, errors.Is(err, menudomain.ErrMenuEntryNotFound))
}

func TestCatalog_Search(t *testing.T) {
	c := seededCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		category string
		wantIDs  []string
	}{
		{"category filter", "", "drinks", []string{"D1", "D2", "D3", "D4"}},
		{"all means no filter", "burger", "all", []string{"F1", "F2"}},
		{"empty category means no filter", "chicken", "", []string{"I1", "I2"}},
		{"id match is case-insensitive", "c4", "", []string{"C4"}},
		{"query within category", "m", "cocktails", []string{"C1", "C2", "C4"}},
		{"no match", "pizza", "all", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Search(ctx, tt.query, tt.category)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := c.Search(ctx, "", "desserts")
	assert.True(t, errors.Is(err, menudomain.ErrInvalidMenuEntry))
}

func TestCatalog_ListByCategory(t *testing.T) {
	c := seededCatalog(t)
	got, err := c.ListByCategory(context.Background(), string(models.CategoryIndian))
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, e := range got {
		assert.Equal(t, models.CategoryIndian, e.Category)
	}
}

func TestCatalog_AddRemove(t *testing.T) {
	c := NewCatalog(memory.NewMenuRepository(), logger.Nop())
	ctx := context.Background()

	e, err := c.Add(ctx, "F5", "Veggie Wrap", decimal.RequireFromString("8.50"), "food")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFood, e.Category)

	_, err = c.Add(ctx, "F5", "Duplicate", decimal.RequireFromString("1"), "food")
	assert.True(t, errors.Is(err, menudomain.ErrMenuEntryAlreadyExists))

	_, err = c.Add(ctx, "F6", "Bad", decimal.RequireFromString("-1"), "food")
	assert.True(t, errors.Is(err, menudomain.ErrInvalidMenuEntry))

	_, err = c.Add(ctx, "X1", "Cake", decimal.RequireFromString("5"), "desserts")
	assert.True(t, errors.Is(err, menudomain.ErrInvalidMenuEntry))

	require.NoError(t, c.Remove(ctx, "F5"))
	assert.True(t, errors.Is(c.Remove(ctx, "F5"), menudomain.ErrMenuEntryNotFound))
}
