package repository

import (
	"context"
	"testing"

	"salespoint/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueName(prefix string) string {
	return prefix + " " + uuid.New().String()
}

func createTestCategory(t *testing.T, repo CategoryRepository) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name:        uniqueName("Test Category"),
		Description: "test category",
	}
	id, err := repo.Create(context.Background(), category)
	require.NoError(t, err)
	category.ID = id

	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", id)
	})

	return category
}

func TestCategoryRepository_CreateAndFind(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, repo)

	found, err := repo.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.Name, found.Name)
	assert.Equal(t, category.Description, found.Description)

	byName, err := repo.FindByName(ctx, category.Name)
	require.NoError(t, err)
	assert.Equal(t, category.ID, byName.ID)
}

func TestCategoryRepository_DuplicateName(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, repo)

	_, err := repo.Create(ctx, &domain.Category{Name: category.Name})
	assert.ErrorIs(t, err, ErrCategoryAlreadyExists)
}

func TestCategoryRepository_Update(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, repo)
	category.Name = uniqueName("Renamed")
	category.Description = "updated"

	require.NoError(t, repo.Update(ctx, category))

	found, err := repo.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.Name, found.Name)
	assert.Equal(t, "updated", found.Description)
}

func TestCategoryRepository_UpdateMissing(t *testing.T) {
	repo := NewCategoryRepository(testDB)

	err := repo.Update(context.Background(), &domain.Category{ID: -1, Name: uniqueName("Ghost")})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryRepository_Delete(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, repo)

	require.NoError(t, repo.Delete(ctx, category.ID))

	_, err := repo.FindByID(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, category.ID), ErrCategoryNotFound)
}

func TestCategoryRepository_HasProducts(t *testing.T) {
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, categoryRepo)

	inUse, err := categoryRepo.HasProducts(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	createTestProduct(t, productRepo, category.ID, "9.99", 5)

	inUse, err = categoryRepo.HasProducts(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestCategoryRepository_Count(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	before, err := repo.Count(ctx)
	require.NoError(t, err)

	createTestCategory(t, repo)

	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
