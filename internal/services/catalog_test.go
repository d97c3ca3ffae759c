package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitshopapp/storefront/internal/models"
)

func TestCatalogListFiltersByCategory(t *testing.T) {
	t.Parallel()

	shirts := models.Category{ID: 1, Name: "Shirts"}
	summer := models.Category{ID: 2, Name: "Summer"}
	catalog := newFakeCatalogStore(
		&models.Product{ID: 1, Slug: "tee", PrimaryCategory: &shirts},
		&models.Product{ID: 2, Slug: "shorts", SecondaryCategories: []models.Category{summer}},
		&models.Product{ID: 3, Slug: "linen", PrimaryCategory: &shirts, SecondaryCategories: []models.Category{summer}},
	)
	catalog.categories = []models.Category{shirts, summer}
	service := NewCatalogService(catalog, testLogger())

	all, err := service.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all.Products, 3)
	assert.Equal(t, []string{"Shirts", "Summer"}, all.Categories)

	filtered, err := service.List(context.Background(), " Summer ")
	require.NoError(t, err)
	require.Len(t, filtered.Products, 2)
	assert.Equal(t, "shorts", filtered.Products[0].Slug)
	assert.Equal(t, "linen", filtered.Products[1].Slug)
}

func TestCatalogDetail(t *testing.T) {
	t.Parallel()

	service := NewCatalogService(newFakeCatalogStore(testProduct()), testLogger())

	product, err := service.Detail(context.Background(), "linen-shirt")
	require.NoError(t, err)
	assert.Len(t, product.Colours, 2)

	_, err = service.Detail(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
