package service

import (
	"context"
	"testing"

	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(n int64) *int64 { return &n }

func TestCreateAssetRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateAssetInput
		field string
	}{
		{"unique with quantity", CreateAssetInput{Name: "Laptop", Type: model.AssetTypeUnique, Quantity: int64Ptr(1)}, "quantity"},
		{"consumable without quantity", CreateAssetInput{Name: "Screws", Type: model.AssetTypeConsumable}, "quantity"},
		{"negative quantity", CreateAssetInput{Name: "Screws", Type: model.AssetTypeConsumable, Quantity: int64Ptr(-1)}, "quantity"},
		{"unknown type", CreateAssetInput{Name: "Screws", Type: "bulk"}, "type"},
		{"missing name", CreateAssetInput{Type: model.AssetTypeUnique}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assets.CreateAsset(ctx, f.principal, tt.in)
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindValidation, svcErr.Kind)
			assert.Equal(t, tt.field, svcErr.Field)
		})
	}

	laptop, err := f.assets.CreateAsset(ctx, f.principal, CreateAssetInput{Name: "Laptop", Type: model.AssetTypeUnique})
	require.NoError(t, err)
	assert.Nil(t, laptop.Quantity)
	assert.Equal(t, "org-1", laptop.OrganizationID)
	assert.Equal(t, f.principal.ID, laptop.CreatorUserID)
}

func TestAssetWithAttributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drill, err := f.assets.CreateAsset(ctx, f.principal, CreateAssetInput{Name: "Drill", Type: model.AssetTypeConsumable, Quantity: int64Ptr(2)})
	require.NoError(t, err)
	saw, err := f.assets.CreateAsset(ctx, f.principal, CreateAssetInput{Name: "Saw", Type: model.AssetTypeUnique})
	require.NoError(t, err)

	drill1, err := f.assets.CreateInstance(ctx, f.principal, drill.ID, "Drill #1")
	require.NoError(t, err)
	saw1, err := f.assets.CreateInstance(ctx, f.principal, saw.ID, "Saw #1")
	require.NoError(t, err)

	weight := f.createAttribute(t, CreateAttributeInput{Name: "Weight", Type: model.AttributeTypeMetric, Unit: strPtr("kilogram")})
	serial := f.createAttribute(t, CreateAttributeInput{Name: "Serial", Type: model.AttributeTypeText, Global: true})
	unused := f.createAttribute(t, CreateAttributeInput{Name: "Unused", Type: model.AttributeTypeText})

	require.NoError(t, f.assets.AttachAttribute(ctx, f.principal, drill.ID, weight.ID))
	require.NoError(t, f.assets.AttachAttribute(ctx, f.principal, drill.ID, serial.ID))
	assert.ErrorIs(t, f.assets.AttachAttribute(ctx, f.principal, drill.ID, serial.ID), ErrValidation)

	for _, in := range []CreateValueInput{
		{AttributeID: weight.ID, AssetInstanceID: &drill1.ID, Type: model.AttributeTypeMetric, Value: 1.8},
		{AttributeID: weight.ID, AssetInstanceID: &saw1.ID, Type: model.AttributeTypeMetric, Value: 4.2},
		{AttributeID: serial.ID, AssetInstanceID: &drill1.ID, Type: model.AttributeTypeText, Value: "SN-1"},
		{AttributeID: unused.ID, AssetInstanceID: &drill1.ID, Type: model.AttributeTypeText, Value: "ignored"},
	} {
		_, err := f.attributes.CreateAttributeValue(ctx, in)
		require.NoError(t, err)
	}

	view, err := f.assets.AssetWithAttributes(ctx, drill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", view.Name)
	require.Len(t, view.Instances, 1)
	assert.Equal(t, drill1.ID, view.Instances[0].ID)

	require.Len(t, view.Attributes, 2)
	assert.Equal(t, weight.ID, view.Attributes[0].ID)
	require.Len(t, view.Attributes[0].Values, 1, "only values of the asset's own instances")
	assert.Equal(t, 1.8, view.Attributes[0].Values[0].(*model.MetricValue).Value)
	assert.Equal(t, serial.ID, view.Attributes[1].ID)
	assert.Len(t, view.Attributes[1].Values, 1)

	_, err = f.assets.AssetWithAttributes(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssetOrganizationScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset, err := f.assets.CreateAsset(ctx, f.principal, CreateAssetInput{Name: "Ladder", Type: model.AssetTypeUnique})
	require.NoError(t, err)

	outsider := model.Principal{ID: f.principal.ID, OrganizationID: strPtr("org-2")}

	_, err = f.assets.OwnedAsset(ctx, outsider, asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.assets.UpdateAsset(ctx, outsider, asset.ID, UpdateAssetInput{Name: strPtr("Step ladder")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.assets.CreateInstance(ctx, outsider, asset.ID, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.assets.TrashAsset(ctx, outsider, asset.ID), ErrNotFound)

	_, err = f.assets.UpdateAsset(ctx, f.principal, asset.ID, UpdateAssetInput{Quantity: int64Ptr(3)})
	assert.ErrorIs(t, err, ErrValidation, "unique assets have no quantity")

	updated, err := f.assets.UpdateAsset(ctx, f.principal, asset.ID, UpdateAssetInput{Name: strPtr("Step ladder")})
	require.NoError(t, err)
	assert.Equal(t, "Step ladder", updated.Name)

	other := f.createAttribute(t, CreateAttributeInput{Name: "Other org", Type: model.AttributeTypeText})
	_, err = f.db.Exec(`UPDATE attributes SET organization_id = 'org-2' WHERE id = $1`, other.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.assets.AttachAttribute(ctx, f.principal, asset.ID, other.ID), ErrNotFound)

	require.NoError(t, f.assets.TrashAsset(ctx, f.principal, asset.ID))
	list, err := f.assets.Assets(ctx, "org-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
