package model

import (
	"time"
)

type AssetType string

const (
	// AssetTypeUnique assets are one-of-a-kind and carry no quantity.
	AssetTypeUnique AssetType = "unique"
	// AssetTypeConsumable assets are stocked in a quantity.
	AssetTypeConsumable AssetType = "consumable"
)

type Asset struct {
	ID             string    `db:"id" json:"id"`
	Type           AssetType `db:"type" json:"type"`
	Quantity       *int64    `db:"quantity" json:"quantity"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	CreatorUserID  string    `db:"creator_user_id" json:"creatorUserId"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	TrashBin       bool      `db:"trash_bin" json:"trashBin"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

type AssetInstance struct {
	ID        string    `db:"id" json:"id"`
	AssetID   string    `db:"asset_id" json:"assetId"`
	Label     string    `db:"label" json:"label"`
	TrashBin  bool      `db:"trash_bin" json:"trashBin"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// AssetWithAttributes is the asset read view: the asset, its instances and
// every attached attribute with the values recorded for those instances.
type AssetWithAttributes struct {
	*Asset
	Instances  []*AssetInstance       `json:"instances"`
	Attributes []*AttributeWithValues `json:"attributes"`
}
