package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/model"
)

var (
	ErrAssetNotFound         = errors.New("asset not found")
	ErrInstanceNotFound      = errors.New("asset instance not found")
	ErrAttributeAlreadyAdded = errors.New("attribute already attached to asset")
)

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	ByID(ctx context.Context, id string) (*model.Asset, error)
	Assets(ctx context.Context, orgID string) ([]*model.Asset, error)
	Update(ctx context.Context, asset *model.Asset) error
	Trash(ctx context.Context, orgID, id string) error

	CreateInstance(ctx context.Context, instance *model.AssetInstance) error
	InstanceByID(ctx context.Context, id string) (*model.AssetInstance, error)
	Instances(ctx context.Context, assetID string) ([]*model.AssetInstance, error)

	AttachAttribute(ctx context.Context, assetID, attributeID string) error
	AttributeIDs(ctx context.Context, assetID string) ([]string, error)
}

type assetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	query := `INSERT INTO assets (id, type, quantity, organization_id, creator_user_id, name, description, trash_bin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Type,
		asset.Quantity,
		asset.OrganizationID,
		asset.CreatorUserID,
		asset.Name,
		asset.Description,
		asset.TrashBin,
		asset.CreatedAt,
		asset.UpdatedAt,
	)

	return err
}

func (r *assetRepository) ByID(ctx context.Context, id string) (*model.Asset, error) {
	asset := &model.Asset{}
	query := `SELECT * FROM assets WHERE id = $1 AND trash_bin = FALSE`

	err := r.db.GetContext(ctx, asset, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}

	return asset, nil
}

func (r *assetRepository) Assets(ctx context.Context, orgID string) ([]*model.Asset, error) {
	assets := []*model.Asset{}
	query := `SELECT * FROM assets WHERE organization_id = $1 AND trash_bin = FALSE ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &assets, query, orgID)
	if err != nil {
		return nil, err
	}

	return assets, nil
}

// Update is scoped to the asset's organization; the type is immutable.
func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) error {
	query := `UPDATE assets
	          SET name = $1, description = $2, quantity = $3, updated_at = $4
	          WHERE id = $5 AND organization_id = $6 AND trash_bin = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		asset.Name,
		asset.Description,
		asset.Quantity,
		asset.UpdatedAt,
		asset.ID,
		asset.OrganizationID,
	)
	if err != nil {
		return err
	}

	return requireRow(result, ErrAssetNotFound)
}

func (r *assetRepository) Trash(ctx context.Context, orgID, id string) error {
	query := `UPDATE assets SET trash_bin = TRUE, updated_at = $1
	          WHERE id = $2 AND organization_id = $3 AND trash_bin = FALSE`

	result, err := r.db.ExecContext(ctx, query, now(), id, orgID)
	if err != nil {
		return err
	}

	return requireRow(result, ErrAssetNotFound)
}

func (r *assetRepository) CreateInstance(ctx context.Context, instance *model.AssetInstance) error {
	query := `INSERT INTO asset_instances (id, asset_id, label, trash_bin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		instance.ID,
		instance.AssetID,
		instance.Label,
		instance.TrashBin,
		instance.CreatedAt,
		instance.UpdatedAt,
	)

	return err
}

func (r *assetRepository) InstanceByID(ctx context.Context, id string) (*model.AssetInstance, error) {
	instance := &model.AssetInstance{}
	query := `SELECT * FROM asset_instances WHERE id = $1 AND trash_bin = FALSE`

	err := r.db.GetContext(ctx, instance, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}

	return instance, nil
}

func (r *assetRepository) Instances(ctx context.Context, assetID string) ([]*model.AssetInstance, error) {
	instances := []*model.AssetInstance{}
	query := `SELECT * FROM asset_instances WHERE asset_id = $1 AND trash_bin = FALSE ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &instances, query, assetID)
	if err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *assetRepository) AttachAttribute(ctx context.Context, assetID, attributeID string) error {
	query := `INSERT INTO asset_attributes (asset_id, attribute_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, assetID, attributeID, now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAttributeAlreadyAdded
		}
		return err
	}

	return nil
}

// AttributeIDs lists attached attributes in attachment order.
func (r *assetRepository) AttributeIDs(ctx context.Context, assetID string) ([]string, error) {
	ids := []string{}
	query := `SELECT attribute_id FROM asset_attributes WHERE asset_id = $1 ORDER BY created_at, attribute_id`

	err := r.db.SelectContext(ctx, &ids, query, assetID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
