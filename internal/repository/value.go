package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/attrtype"
	"github.com/stockpile-hq/stockpile/internal/model"
)

// valueRow is a pointer to one of the concrete value structs.
type valueRow[T any] interface {
	*T
	model.Value
}

// valueTable stores the scalar value types, one relation each.
type valueTable[T any, P valueRow[T]] struct {
	db     *sqlx.DB
	table  string
	typ    model.AttributeType
	insert string
}

func newValueTable[T any, P valueRow[T]](db *sqlx.DB, typ model.AttributeType, table, columns string) *valueTable[T, P] {
	return &valueTable[T, P]{
		db:    db,
		table: table,
		typ:   typ,
		insert: `INSERT INTO ` + table + ` (id, attribute_id, asset_instance_id, ` + columns + `, created_at, updated_at)
		         VALUES (:id, :attribute_id, :asset_instance_id, ` + namedParams(columns) + `, :created_at, :updated_at)`,
	}
}

func (t *valueTable[T, P]) Insert(ctx context.Context, v model.Value) error {
	row, ok := v.(P)
	if !ok {
		return fmt.Errorf("%s: unexpected value %T", t.table, v)
	}

	_, err := t.db.NamedExecContext(ctx, t.insert, row)
	return err
}

func (t *valueTable[T, P]) ByAttributeIDs(ctx context.Context, attributeIDs []string) ([]model.Value, error) {
	if len(attributeIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM `+t.table+` WHERE attribute_id IN (?) ORDER BY created_at, id`, attributeIDs)
	if err != nil {
		return nil, err
	}

	var rows []T
	err = t.db.SelectContext(ctx, &rows, t.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	values := make([]model.Value, 0, len(rows))
	for i := range rows {
		v := P(&rows[i])
		v.Base().Type = t.typ
		values = append(values, v)
	}

	return values, nil
}

// selectionTable stores selection and multi_selection values: one row in
// selection_values plus one selection_options row per declared option.
type selectionTable struct {
	db *sqlx.DB
}

func (t *selectionTable) Insert(ctx context.Context, v model.Value) error {
	sel, ok := v.(*model.SelectionValue)
	if !ok {
		return fmt.Errorf("selection_values: unexpected value %T", v)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO selection_values (id, attribute_id, asset_instance_id, multi, created_at, updated_at)
		 VALUES (:id, :attribute_id, :asset_instance_id, :multi, :created_at, :updated_at)`, sel)
	if err != nil {
		return err
	}

	for i, opt := range sel.Options {
		opt.ID = uuid.NewString()
		opt.SelectionID = sel.ID
		opt.Position = i

		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO selection_options (id, selection_id, value, selected, position)
			 VALUES (:id, :selection_id, :value, :selected, :position)`, opt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (t *selectionTable) ByAttributeIDs(ctx context.Context, attributeIDs []string) ([]model.Value, error) {
	if len(attributeIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM selection_values WHERE attribute_id IN (?) ORDER BY created_at, id`, attributeIDs)
	if err != nil {
		return nil, err
	}

	var rows []*model.SelectionValue
	err = t.db.SelectContext(ctx, &rows, t.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	byID := make(map[string]*model.SelectionValue, len(rows))
	for _, row := range rows {
		row.Type = model.AttributeTypeSelection
		if row.Multi {
			row.Type = model.AttributeTypeMultiSelection
		}
		row.Options = []*model.SelectionOption{}
		ids = append(ids, row.ID)
		byID[row.ID] = row
	}

	query, args, err = sqlx.In(`SELECT * FROM selection_options WHERE selection_id IN (?) ORDER BY selection_id, position`, ids)
	if err != nil {
		return nil, err
	}

	var options []*model.SelectionOption
	err = t.db.SelectContext(ctx, &options, t.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		if sel, ok := byID[opt.SelectionID]; ok {
			sel.Options = append(sel.Options, opt)
		}
	}

	values := make([]model.Value, 0, len(rows))
	for _, row := range rows {
		values = append(values, row)
	}

	return values, nil
}

// NewValueTables returns the accessor for every attribute type. Selection and
// multi_selection share one relation.
func NewValueTables(db *sqlx.DB) map[model.AttributeType]attrtype.ValueTable {
	selections := &selectionTable{db: db}

	return map[model.AttributeType]attrtype.ValueTable{
		model.AttributeTypeNumber:         newValueTable[model.NumberValue](db, model.AttributeTypeNumber, "number_values", "value"),
		model.AttributeTypeText:           newValueTable[model.TextValue](db, model.AttributeTypeText, "text_values", "value"),
		model.AttributeTypeDate:           newValueTable[model.DateValue](db, model.AttributeTypeDate, "date_values", "value"),
		model.AttributeTypeMetric:         newValueTable[model.MetricValue](db, model.AttributeTypeMetric, "metric_values", "value, metric_unit"),
		model.AttributeTypeTimeMetric:     newValueTable[model.TimeMetricValue](db, model.AttributeTypeTimeMetric, "time_metric_values", "value, time_metric_unit"),
		model.AttributeTypeSwitch:         newValueTable[model.SwitchValue](db, model.AttributeTypeSwitch, "switch_values", "value"),
		model.AttributeTypeFile:           newValueTable[model.FileValue](db, model.AttributeTypeFile, "file_values", "link"),
		model.AttributeTypeSelection:      selections,
		model.AttributeTypeMultiSelection: selections,
	}
}

func namedParams(columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = ":" + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
