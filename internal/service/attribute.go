package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockpile-hq/stockpile/internal/attrtype"
	"github.com/stockpile-hq/stockpile/internal/metrics"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/repository"
	"github.com/stockpile-hq/stockpile/internal/validation"
)

type CreateAttributeInput struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Type        model.AttributeType `json:"type"`
	Unit        *string             `json:"unit"`
	TimeUnit    *string             `json:"timeUnit"`
	Options     []string            `json:"options"`
	Required    bool                `json:"required"`
	// Global attributes have no organization and are visible to every organization.
	Global bool `json:"global"`
}

type UpdateAttributeInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Required    *bool   `json:"required"`
}

type CreateValueInput struct {
	AttributeID     string              `json:"-"`
	AssetInstanceID *string             `json:"assetInstanceId"`
	Type            model.AttributeType `json:"type"`
	Value           any                 `json:"value"`
	Unit            string              `json:"unit"`
}

// instanceLookup is the part of the asset store value creation depends on.
type instanceLookup interface {
	ByID(ctx context.Context, id string) (*model.Asset, error)
	InstanceByID(ctx context.Context, id string) (*model.AssetInstance, error)
}

type AttributeService struct {
	attributeRepository repository.AttributeRepository
	instances           instanceLookup
	registry            *attrtype.Registry
}

func NewAttributeService(
	attributeRepository repository.AttributeRepository,
	instances instanceLookup,
	registry *attrtype.Registry,
) *AttributeService {
	return &AttributeService{
		attributeRepository: attributeRepository,
		instances:           instances,
		registry:            registry,
	}
}

// Registry exposes the type registry for read-only callers such as the type listing.
func (s *AttributeService) Registry() *attrtype.Registry {
	return s.registry
}

func (s *AttributeService) CreateAttribute(ctx context.Context, principal model.Principal, in CreateAttributeInput) (*model.Attribute, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validationError("name", err.Error())
	}

	handler, err := s.registry.Resolve(in.Type)
	if err != nil {
		return nil, validationError("type", "type must be one of: "+joinTypes(s.registry.Types()))
	}

	var options model.OptionSet
	for _, opt := range in.Options {
		options = append(options, strings.TrimSpace(opt))
	}

	now := time.Now().UTC()
	attr := &model.Attribute{
		ID:          uuid.Must(uuid.NewV7()).String(),
		AuthorID:    principal.ID,
		Name:        name,
		Description: trimOptional(in.Description),
		Type:        in.Type,
		Unit:        trimOptional(in.Unit),
		TimeUnit:    trimOptional(in.TimeUnit),
		Options:     options,
		Required:    in.Required,
		TrashBin:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !in.Global {
		if principal.OrganizationID == nil {
			return nil, validationError("organizationId", "organization required for non-global attribute")
		}
		attr.OrganizationID = principal.OrganizationID
	}

	err = handler.CheckDefinition(attr)
	if err != nil {
		var defErr *attrtype.DefinitionError
		if errors.As(err, &defErr) {
			return nil, &Error{Kind: KindValidation, Field: defErr.Field, Message: defErr.Message, Err: err}
		}
		return nil, validationError("", err.Error())
	}

	err = s.attributeRepository.Create(ctx, attr)
	if err != nil {
		slog.Error("failed to create attribute", "error", err, "type", attr.Type, "author_id", attr.AuthorID)
		return nil, storageError(err)
	}

	slog.Info("attribute created", "attribute_id", attr.ID, "type", attr.Type, "global", attr.IsGlobal())
	return attr, nil
}

// CreateAttributeValue validates raw input against the attribute's declared
// type and stores it in that type's value relation. The caller-supplied type
// must match the declared type; nothing is written when any check fails.
func (s *AttributeService) CreateAttributeValue(ctx context.Context, in CreateValueInput) (model.Value, error) {
	return s.createValue(ctx, nil, in)
}

// CreateAttributeValueFor is CreateAttributeValue on behalf of principal. An
// attribute or asset instance outside the principal's organization is
// reported as not found.
func (s *AttributeService) CreateAttributeValueFor(ctx context.Context, principal model.Principal, in CreateValueInput) (model.Value, error) {
	return s.createValue(ctx, &principal, in)
}

func (s *AttributeService) createValue(ctx context.Context, principal *model.Principal, in CreateValueInput) (model.Value, error) {
	if in.Type == "" {
		return nil, s.reject(in.Type, validationError("type", "type is required"))
	}

	attr, err := s.attributeRepository.ByID(ctx, in.AttributeID)
	if err != nil {
		if errors.Is(err, repository.ErrAttributeNotFound) {
			return nil, s.reject(in.Type, notFoundError("attribute not found", err))
		}
		slog.Error("failed to load attribute", "error", err, "attribute_id", in.AttributeID)
		return nil, storageError(err)
	}
	if principal != nil && !attr.VisibleTo(principal.OrganizationID) {
		return nil, s.reject(in.Type, notFoundError("attribute not found", repository.ErrAttributeNotFound))
	}

	if in.Type != attr.Type {
		return nil, s.reject(in.Type, &Error{
			Kind:    KindTypeMismatch,
			Field:   "type",
			Message: "value type " + strconv.Quote(string(in.Type)) + " does not match attribute type " + strconv.Quote(string(attr.Type)),
		})
	}

	handler, err := s.registry.Resolve(attr.Type)
	if err != nil {
		return nil, s.reject(in.Type, &Error{Kind: KindUnsupportedType, Field: "type", Message: err.Error(), Err: err})
	}

	if in.AssetInstanceID != nil {
		err = s.checkInstance(ctx, principal, *in.AssetInstanceID)
		if err != nil {
			return nil, s.reject(in.Type, err)
		}
	}

	value, err := handler.Validate(attr, attrtype.Input{Value: in.Value, Unit: in.Unit})
	if err != nil {
		var valErr *attrtype.ValueError
		if errors.As(err, &valErr) {
			return nil, s.reject(in.Type, &Error{Kind: KindInvalidValue, Field: "value", Message: valErr.Message, Err: err})
		}
		return nil, s.reject(in.Type, &Error{Kind: KindInvalidValue, Field: "value", Message: err.Error(), Err: err})
	}

	now := time.Now().UTC()
	b := value.Base()
	b.ID = uuid.Must(uuid.NewV7()).String()
	b.AssetInstanceID = in.AssetInstanceID
	b.CreatedAt = now
	b.UpdatedAt = now

	defer metrics.TrackDBOperation("values.insert")(time.Now())
	err = handler.Table.Insert(ctx, value)
	if err != nil {
		slog.Error("failed to store attribute value", "error", err, "attribute_id", attr.ID, "type", attr.Type)
		return nil, s.reject(in.Type, storageError(err))
	}

	metrics.RecordValueCreated(string(attr.Type))
	return value, nil
}

// checkInstance verifies the instance exists and, for a principal, that its
// asset belongs to the principal's organization.
func (s *AttributeService) checkInstance(ctx context.Context, principal *model.Principal, id string) error {
	instance, err := s.instances.InstanceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInstanceNotFound) {
			return notFoundError("asset instance not found", err)
		}
		slog.Error("failed to load asset instance", "error", err, "asset_instance_id", id)
		return storageError(err)
	}
	if principal == nil {
		return nil
	}

	asset, err := s.instances.ByID(ctx, instance.AssetID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return notFoundError("asset instance not found", repository.ErrInstanceNotFound)
		}
		slog.Error("failed to load asset", "error", err, "asset_id", instance.AssetID)
		return storageError(err)
	}
	if principal.OrganizationID == nil || asset.OrganizationID != *principal.OrganizationID {
		return notFoundError("asset instance not found", repository.ErrInstanceNotFound)
	}
	return nil
}

func (s *AttributeService) reject(t model.AttributeType, err error) error {
	metrics.RecordValueRejected(string(t), string(KindOf(err)))
	return err
}

// Definition returns the active attribute without its values.
func (s *AttributeService) Definition(ctx context.Context, id string) (*model.Attribute, error) {
	attr, err := s.attributeRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAttributeNotFound) {
			return nil, notFoundError("attribute not found", err)
		}
		slog.Error("failed to load attribute", "error", err, "attribute_id", id)
		return nil, storageError(err)
	}
	return attr, nil
}

func (s *AttributeService) AttributeByID(ctx context.Context, id string) (*model.AttributeWithValues, error) {
	attr, err := s.Definition(ctx, id)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.withValues(ctx, []*model.Attribute{attr}, nil)
	if err != nil {
		return nil, err
	}
	return aggregates[0], nil
}

// AllAttributes returns every active attribute ordered by creation, each with
// the values of its declared type.
func (s *AttributeService) AllAttributes(ctx context.Context) ([]*model.AttributeWithValues, error) {
	defer metrics.TrackDBOperation("attributes.all")(time.Now())

	attrs, err := s.attributeRepository.All(ctx)
	if err != nil {
		slog.Error("failed to list attributes", "error", err)
		return nil, storageError(err)
	}
	return s.withValues(ctx, attrs, nil)
}

// AttributesForOrganization returns the organization's attributes and the global ones.
func (s *AttributeService) AttributesForOrganization(ctx context.Context, orgID string) ([]*model.AttributeWithValues, error) {
	attrs, err := s.attributeRepository.ByOrganization(ctx, orgID)
	if err != nil {
		slog.Error("failed to list attributes", "error", err, "organization_id", orgID)
		return nil, storageError(err)
	}
	return s.withValues(ctx, attrs, nil)
}

// VisibleAttributes returns the attributes principal may use: its
// organization's own plus the global ones, or only the global ones when the
// principal has no organization.
func (s *AttributeService) VisibleAttributes(ctx context.Context, principal model.Principal) ([]*model.AttributeWithValues, error) {
	if principal.OrganizationID != nil {
		return s.AttributesForOrganization(ctx, *principal.OrganizationID)
	}

	attrs, err := s.attributeRepository.All(ctx)
	if err != nil {
		slog.Error("failed to list attributes", "error", err)
		return nil, storageError(err)
	}
	global := attrs[:0]
	for _, attr := range attrs {
		if attr.IsGlobal() {
			global = append(global, attr)
		}
	}
	return s.withValues(ctx, global, nil)
}

// AttributesWithValues loads the given attributes with values restricted to
// instanceIDs. A nil instanceIDs keeps every value.
func (s *AttributeService) AttributesWithValues(ctx context.Context, attributeIDs, instanceIDs []string) ([]*model.AttributeWithValues, error) {
	attrs, err := s.attributeRepository.ByIDs(ctx, attributeIDs)
	if err != nil {
		slog.Error("failed to load attributes", "error", err)
		return nil, storageError(err)
	}

	if instanceIDs == nil {
		return s.withValues(ctx, attrs, nil)
	}
	keep := make(map[string]bool, len(instanceIDs))
	for _, id := range instanceIDs {
		keep[id] = true
	}
	return s.withValues(ctx, attrs, keep)
}

// withValues folds the value relations into one aggregate per attribute,
// preserving the order of attrs. One query runs per distinct type present.
func (s *AttributeService) withValues(ctx context.Context, attrs []*model.Attribute, instances map[string]bool) ([]*model.AttributeWithValues, error) {
	out := make([]*model.AttributeWithValues, 0, len(attrs))
	byID := make(map[string]*model.AttributeWithValues, len(attrs))
	idsByTable := make(map[attrtype.ValueTable][]string)
	var tables []attrtype.ValueTable

	for _, attr := range attrs {
		agg := &model.AttributeWithValues{Attribute: attr, Values: []model.Value{}}
		out = append(out, agg)
		byID[attr.ID] = agg

		handler, err := s.registry.Resolve(attr.Type)
		if err != nil || handler.Table == nil {
			slog.Warn("attribute has no value table", "attribute_id", attr.ID, "type", attr.Type)
			continue
		}
		if _, seen := idsByTable[handler.Table]; !seen {
			tables = append(tables, handler.Table)
		}
		idsByTable[handler.Table] = append(idsByTable[handler.Table], attr.ID)
	}

	for _, table := range tables {
		values, err := table.ByAttributeIDs(ctx, idsByTable[table])
		if err != nil {
			slog.Error("failed to load attribute values", "error", err)
			return nil, storageError(err)
		}

		for _, v := range values {
			b := v.Base()
			agg, ok := byID[b.AttributeID]
			if !ok || agg.Type != v.ValueType() {
				continue
			}
			if instances != nil && (b.AssetInstanceID == nil || !instances[*b.AssetInstanceID]) {
				continue
			}
			agg.Values = append(agg.Values, v)
		}
	}

	return out, nil
}

// UpdateAttribute changes the mutable definition fields. Only the author may
// update, and the check happens in the same statement as the write.
func (s *AttributeService) UpdateAttribute(ctx context.Context, principal model.Principal, id string, in UpdateAttributeInput) (*model.Attribute, error) {
	attr, err := s.Definition(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, validationError("name", err.Error())
		}
		attr.Name = name
	}
	if in.Description != nil {
		attr.Description = trimOptional(in.Description)
	}
	if in.Required != nil {
		attr.Required = *in.Required
	}
	attr.UpdatedAt = time.Now().UTC()

	err = s.attributeRepository.Update(ctx, principal.ID, attr)
	if err != nil {
		if errors.Is(err, repository.ErrAttributeNotFound) {
			return nil, notFoundError("attribute not found", err)
		}
		slog.Error("failed to update attribute", "error", err, "attribute_id", id)
		return nil, storageError(err)
	}

	return attr, nil
}

// TrashAttribute moves the attribute to the trash bin. Its values stay in place.
func (s *AttributeService) TrashAttribute(ctx context.Context, principal model.Principal, id string) error {
	err := s.attributeRepository.Trash(ctx, principal.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAttributeNotFound) {
			return notFoundError("attribute not found", err)
		}
		slog.Error("failed to trash attribute", "error", err, "attribute_id", id)
		return storageError(err)
	}

	slog.Info("attribute trashed", "attribute_id", id, "user_id", principal.ID)
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func joinTypes(types []model.AttributeType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
