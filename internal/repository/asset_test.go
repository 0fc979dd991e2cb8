package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRepository(t *testing.T) {
	ctx := context.Background()
	conn, user := setup(t)
	repo := NewAssetRepository(conn)
	attrs := NewAttributeRepository(conn)

	now := time.Now().UTC()
	qty := int64(10)
	asset := &model.Asset{
		ID:             uuid.NewString(),
		Type:           model.AssetTypeConsumable,
		Quantity:       &qty,
		OrganizationID: *user.OrganizationID,
		CreatorUserID:  user.ID,
		Name:           "Screws",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.Create(ctx, asset))

	t.Run("unique asset with quantity violates check", func(t *testing.T) {
		bad := *asset
		bad.ID = uuid.NewString()
		bad.Type = model.AssetTypeUnique
		assert.Error(t, repo.Create(ctx, &bad))
	})

	t.Run("by id and list", func(t *testing.T) {
		got, err := repo.ByID(ctx, asset.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Quantity)
		assert.Equal(t, int64(10), *got.Quantity)

		list, err := repo.Assets(ctx, "org-1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = repo.Assets(ctx, "org-2")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("instances", func(t *testing.T) {
		inst := &model.AssetInstance{ID: uuid.NewString(), AssetID: asset.ID, Label: "Box 1", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.CreateInstance(ctx, inst))

		got, err := repo.InstanceByID(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, "Box 1", got.Label)

		list, err := repo.Instances(ctx, asset.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = repo.InstanceByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrInstanceNotFound)
	})

	t.Run("attach attribute once", func(t *testing.T) {
		attr := newAttribute(user, "Length", model.AttributeTypeNumber, now)
		require.NoError(t, attrs.Create(ctx, attr))

		require.NoError(t, repo.AttachAttribute(ctx, asset.ID, attr.ID))
		assert.ErrorIs(t, repo.AttachAttribute(ctx, asset.ID, attr.ID), ErrAttributeAlreadyAdded)

		ids, err := repo.AttributeIDs(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{attr.ID}, ids)
	})

	t.Run("update is scoped to organization", func(t *testing.T) {
		changed := *asset
		changed.Name = "Bolts"
		changed.UpdatedAt = time.Now().UTC()
		changed.OrganizationID = "org-2"
		assert.ErrorIs(t, repo.Update(ctx, &changed), ErrAssetNotFound)

		changed.OrganizationID = "org-1"
		require.NoError(t, repo.Update(ctx, &changed))
		got, err := repo.ByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bolts", got.Name)
	})

	t.Run("trash", func(t *testing.T) {
		require.NoError(t, repo.Trash(ctx, "org-1", asset.ID))
		_, err := repo.ByID(ctx, asset.ID)
		assert.ErrorIs(t, err, ErrAssetNotFound)
		assert.ErrorIs(t, repo.Trash(ctx, "org-1", asset.ID), ErrAssetNotFound)
	})
}
