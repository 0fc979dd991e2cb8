package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/repository"
	"github.com/stockpile-hq/stockpile/internal/validation"
)

type CreateAssetInput struct {
	Type        model.AssetType `json:"type"`
	Quantity    *int64          `json:"quantity"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
}

type UpdateAssetInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Quantity    *int64  `json:"quantity"`
}

type AssetService struct {
	assetRepository  repository.AssetRepository
	attributeService *AttributeService
}

func NewAssetService(assetRepository repository.AssetRepository, attributeService *AttributeService) *AssetService {
	return &AssetService{
		assetRepository:  assetRepository,
		attributeService: attributeService,
	}
}

func (s *AssetService) CreateAsset(ctx context.Context, principal model.Principal, in CreateAssetInput) (*model.Asset, error) {
	if principal.OrganizationID == nil {
		return nil, validationError("organizationId", "organization required to create assets")
	}

	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validationError("name", err.Error())
	}

	switch in.Type {
	case model.AssetTypeUnique:
		if in.Quantity != nil {
			return nil, validationError("quantity", "quantity is not allowed for unique assets")
		}
	case model.AssetTypeConsumable:
		if in.Quantity == nil {
			return nil, validationError("quantity", "quantity required for consumable assets")
		}
		if *in.Quantity < 0 {
			return nil, validationError("quantity", "quantity must not be negative")
		}
	default:
		return nil, validationError("type", "type must be one of: unique, consumable")
	}

	now := time.Now().UTC()
	asset := &model.Asset{
		ID:             uuid.New().String(),
		Type:           in.Type,
		Quantity:       in.Quantity,
		OrganizationID: *principal.OrganizationID,
		CreatorUserID:  principal.ID,
		Name:           name,
		Description:    trimOptional(in.Description),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.assetRepository.Create(ctx, asset)
	if err != nil {
		slog.Error("failed to create asset", "error", err, "organization_id", asset.OrganizationID)
		return nil, storageError(err)
	}

	return asset, nil
}

func (s *AssetService) AssetByID(ctx context.Context, id string) (*model.Asset, error) {
	asset, err := s.assetRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, notFoundError("asset not found", err)
		}
		slog.Error("failed to load asset", "error", err, "asset_id", id)
		return nil, storageError(err)
	}
	return asset, nil
}

// OwnedAsset returns the asset only when it belongs to the principal's organization.
func (s *AssetService) OwnedAsset(ctx context.Context, principal model.Principal, id string) (*model.Asset, error) {
	asset, err := s.AssetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.OrganizationID == nil || *principal.OrganizationID != asset.OrganizationID {
		return nil, notFoundError("asset not found", repository.ErrAssetNotFound)
	}
	return asset, nil
}

func (s *AssetService) Assets(ctx context.Context, orgID string) ([]*model.Asset, error) {
	assets, err := s.assetRepository.Assets(ctx, orgID)
	if err != nil {
		slog.Error("failed to list assets", "error", err, "organization_id", orgID)
		return nil, storageError(err)
	}
	return assets, nil
}

func (s *AssetService) UpdateAsset(ctx context.Context, principal model.Principal, id string, in UpdateAssetInput) (*model.Asset, error) {
	asset, err := s.OwnedAsset(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, validationError("name", err.Error())
		}
		asset.Name = name
	}
	if in.Description != nil {
		asset.Description = trimOptional(in.Description)
	}
	if in.Quantity != nil {
		if asset.Type == model.AssetTypeUnique {
			return nil, validationError("quantity", "quantity is not allowed for unique assets")
		}
		if *in.Quantity < 0 {
			return nil, validationError("quantity", "quantity must not be negative")
		}
		asset.Quantity = in.Quantity
	}
	asset.UpdatedAt = time.Now().UTC()

	err = s.assetRepository.Update(ctx, asset)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, notFoundError("asset not found", err)
		}
		slog.Error("failed to update asset", "error", err, "asset_id", id)
		return nil, storageError(err)
	}

	return asset, nil
}

func (s *AssetService) TrashAsset(ctx context.Context, principal model.Principal, id string) error {
	if principal.OrganizationID == nil {
		return notFoundError("asset not found", repository.ErrAssetNotFound)
	}

	err := s.assetRepository.Trash(ctx, *principal.OrganizationID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return notFoundError("asset not found", err)
		}
		slog.Error("failed to trash asset", "error", err, "asset_id", id)
		return storageError(err)
	}

	return nil
}

func (s *AssetService) CreateInstance(ctx context.Context, principal model.Principal, assetID, label string) (*model.AssetInstance, error) {
	asset, err := s.OwnedAsset(ctx, principal, assetID)
	if err != nil {
		return nil, err
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return nil, validationError("label", "label is required")
	}

	now := time.Now().UTC()
	instance := &model.AssetInstance{
		ID:        uuid.New().String(),
		AssetID:   asset.ID,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.assetRepository.CreateInstance(ctx, instance)
	if err != nil {
		slog.Error("failed to create asset instance", "error", err, "asset_id", asset.ID)
		return nil, storageError(err)
	}

	return instance, nil
}

func (s *AssetService) Instances(ctx context.Context, assetID string) ([]*model.AssetInstance, error) {
	instances, err := s.assetRepository.Instances(ctx, assetID)
	if err != nil {
		slog.Error("failed to list asset instances", "error", err, "asset_id", assetID)
		return nil, storageError(err)
	}
	return instances, nil
}

// AttachAttribute links an attribute to an asset. The attribute must be
// visible to the asset's organization.
func (s *AssetService) AttachAttribute(ctx context.Context, principal model.Principal, assetID, attributeID string) error {
	asset, err := s.OwnedAsset(ctx, principal, assetID)
	if err != nil {
		return err
	}

	attr, err := s.attributeService.AttributeByID(ctx, attributeID)
	if err != nil {
		return err
	}
	if !attr.VisibleTo(&asset.OrganizationID) {
		return notFoundError("attribute not found", repository.ErrAttributeNotFound)
	}

	err = s.assetRepository.AttachAttribute(ctx, asset.ID, attr.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAttributeAlreadyAdded) {
			return validationError("attributeId", "attribute already attached to asset")
		}
		slog.Error("failed to attach attribute", "error", err, "asset_id", asset.ID, "attribute_id", attr.ID)
		return storageError(err)
	}

	return nil
}

// AssetWithAttributes assembles the asset, its instances and each attached
// attribute with the values recorded for those instances.
func (s *AssetService) AssetWithAttributes(ctx context.Context, assetID string) (*model.AssetWithAttributes, error) {
	asset, err := s.AssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	instances, err := s.Instances(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	attributeIDs, err := s.assetRepository.AttributeIDs(ctx, asset.ID)
	if err != nil {
		slog.Error("failed to list asset attributes", "error", err, "asset_id", asset.ID)
		return nil, storageError(err)
	}

	instanceIDs := make([]string, 0, len(instances))
	for _, inst := range instances {
		instanceIDs = append(instanceIDs, inst.ID)
	}

	attributes, err := s.attributeService.AttributesWithValues(ctx, attributeIDs, instanceIDs)
	if err != nil {
		return nil, err
	}

	return &model.AssetWithAttributes{
		Asset:      asset,
		Instances:  instances,
		Attributes: attributes,
	}, nil
}
