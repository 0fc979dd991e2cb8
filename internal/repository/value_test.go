package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTables(t *testing.T) {
	ctx := context.Background()
	conn, user := setup(t)
	attrs := NewAttributeRepository(conn)
	tables := NewValueTables(conn)

	for _, typ := range []model.AttributeType{
		model.AttributeTypeNumber, model.AttributeTypeText, model.AttributeTypeMetric,
		model.AttributeTypeDate, model.AttributeTypeSwitch, model.AttributeTypeSelection,
		model.AttributeTypeMultiSelection, model.AttributeTypeFile, model.AttributeTypeTimeMetric,
	} {
		assert.NotNil(t, tables[typ], "table for %s", typ)
	}
	assert.Same(t, tables[model.AttributeTypeSelection], tables[model.AttributeTypeMultiSelection])

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("metric", func(t *testing.T) {
		kg := model.MetricUnitKilogram
		attr := newAttribute(user, "Weight", model.AttributeTypeMetric, t0)
		attr.Unit = &kg
		require.NoError(t, attrs.Create(ctx, attr))

		v := &model.MetricValue{ValueBase: base(attr, t0), Value: 12.5, MetricUnit: kg}
		table := tables[model.AttributeTypeMetric]
		require.NoError(t, table.Insert(ctx, v))

		got, err := table.ByAttributeIDs(ctx, []string{attr.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		mv, ok := got[0].(*model.MetricValue)
		require.True(t, ok)
		assert.Equal(t, v.ID, mv.ID)
		assert.Equal(t, 12.5, mv.Value)
		assert.Equal(t, kg, mv.MetricUnit)
		assert.Equal(t, model.AttributeTypeMetric, mv.ValueType())
	})

	t.Run("date keeps the instant", func(t *testing.T) {
		attr := newAttribute(user, "Purchased", model.AttributeTypeDate, t0)
		require.NoError(t, attrs.Create(ctx, attr))

		when := time.Date(2021, 2, 17, 13, 35, 50, 141_000_000, time.UTC)
		table := tables[model.AttributeTypeDate]
		require.NoError(t, table.Insert(ctx, &model.DateValue{ValueBase: base(attr, t0), Value: when}))

		got, err := table.ByAttributeIDs(ctx, []string{attr.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, when.Equal(got[0].(*model.DateValue).Value))
	})

	t.Run("switch", func(t *testing.T) {
		attr := newAttribute(user, "Fragile", model.AttributeTypeSwitch, t0)
		require.NoError(t, attrs.Create(ctx, attr))

		table := tables[model.AttributeTypeSwitch]
		require.NoError(t, table.Insert(ctx, &model.SwitchValue{ValueBase: base(attr, t0), Value: true}))

		got, err := table.ByAttributeIDs(ctx, []string{attr.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].(*model.SwitchValue).Value)
	})

	t.Run("selection keeps option order", func(t *testing.T) {
		attr := newAttribute(user, "Tags", model.AttributeTypeMultiSelection, t0)
		attr.Options = model.OptionSet{"a", "b", "c"}
		require.NoError(t, attrs.Create(ctx, attr))

		v := &model.SelectionValue{
			ValueBase: base(attr, t0),
			Multi:     true,
			Options: []*model.SelectionOption{
				{Value: "a", Selected: true},
				{Value: "b"},
				{Value: "c", Selected: true},
			},
		}
		table := tables[model.AttributeTypeMultiSelection]
		require.NoError(t, table.Insert(ctx, v))

		got, err := table.ByAttributeIDs(ctx, []string{attr.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		sv := got[0].(*model.SelectionValue)
		assert.Equal(t, model.AttributeTypeMultiSelection, sv.Type)
		require.Len(t, sv.Options, 3)
		assert.Equal(t, "b", sv.Options[1].Value)
		assert.Equal(t, []string{"a", "c"}, sv.Selected())
	})

	t.Run("empty lookups", func(t *testing.T) {
		for _, table := range tables {
			got, err := table.ByAttributeIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	})

	t.Run("wrong value type is rejected", func(t *testing.T) {
		err := tables[model.AttributeTypeNumber].Insert(ctx, &model.TextValue{})
		assert.Error(t, err)
	})
}
