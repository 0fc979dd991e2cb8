package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/model"
)

var (
	ErrAttributeNotFound = errors.New("attribute not found")
)

type AttributeRepository interface {
	Create(ctx context.Context, attr *model.Attribute) error
	ByID(ctx context.Context, id string) (*model.Attribute, error)
	ByIDs(ctx context.Context, ids []string) ([]*model.Attribute, error)
	All(ctx context.Context) ([]*model.Attribute, error)
	ByOrganization(ctx context.Context, orgID string) ([]*model.Attribute, error)
	Update(ctx context.Context, authorID string, attr *model.Attribute) error
	Trash(ctx context.Context, authorID, id string) error
}

type attributeRepository struct {
	db *sqlx.DB
}

func NewAttributeRepository(db *sqlx.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	query := `INSERT INTO attributes (id, organization_id, author_id, name, description, type, unit, time_unit, options, required, trash_bin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		attr.ID,
		attr.OrganizationID,
		attr.AuthorID,
		attr.Name,
		attr.Description,
		attr.Type,
		attr.Unit,
		attr.TimeUnit,
		attr.Options,
		attr.Required,
		attr.TrashBin,
		attr.CreatedAt,
		attr.UpdatedAt,
	)

	return err
}

// ByID returns an active attribute. Trashed attributes are reported as not found.
func (r *attributeRepository) ByID(ctx context.Context, id string) (*model.Attribute, error) {
	attr := &model.Attribute{}
	query := `SELECT * FROM attributes WHERE id = $1 AND trash_bin = FALSE`

	err := r.db.GetContext(ctx, attr, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttributeNotFound
	}
	if err != nil {
		return nil, err
	}

	return attr, nil
}

func (r *attributeRepository) ByIDs(ctx context.Context, ids []string) ([]*model.Attribute, error) {
	attrs := []*model.Attribute{}
	if len(ids) == 0 {
		return attrs, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM attributes WHERE id IN (?) AND trash_bin = FALSE ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &attrs, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

func (r *attributeRepository) All(ctx context.Context) ([]*model.Attribute, error) {
	attrs := []*model.Attribute{}
	query := `SELECT * FROM attributes WHERE trash_bin = FALSE ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &attrs, query)
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// ByOrganization returns the organization's own attributes together with the global ones.
func (r *attributeRepository) ByOrganization(ctx context.Context, orgID string) ([]*model.Attribute, error) {
	attrs := []*model.Attribute{}
	query := `SELECT * FROM attributes
	          WHERE (organization_id = $1 OR organization_id IS NULL) AND trash_bin = FALSE
	          ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &attrs, query, orgID)
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// Update rewrites the mutable definition fields. Ownership and the active state
// are checked in the same statement.
func (r *attributeRepository) Update(ctx context.Context, authorID string, attr *model.Attribute) error {
	query := `UPDATE attributes
	          SET name = $1, description = $2, required = $3, updated_at = $4
	          WHERE id = $5 AND author_id = $6 AND trash_bin = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		attr.Name,
		attr.Description,
		attr.Required,
		attr.UpdatedAt,
		attr.ID,
		authorID,
	)
	if err != nil {
		return err
	}

	return requireRow(result, ErrAttributeNotFound)
}

func (r *attributeRepository) Trash(ctx context.Context, authorID, id string) error {
	query := `UPDATE attributes SET trash_bin = TRUE, updated_at = $1
	          WHERE id = $2 AND author_id = $3 AND trash_bin = FALSE`

	result, err := r.db.ExecContext(ctx, query, now(), id, authorID)
	if err != nil {
		return err
	}

	return requireRow(result, ErrAttributeNotFound)
}
