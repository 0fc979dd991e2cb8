// Package attrtype is the single source of truth for attribute types: for each
// member of the closed type set it holds the value validator, the definition
// companion-field rule, the unit domain and the value table accessor.
package attrtype

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/stockpile-hq/stockpile/internal/model"
)

var (
	ErrUnsupportedType = errors.New("unsupported attribute type")
	ErrInvalidValue    = errors.New("invalid attribute value")
	ErrInvalidDef      = errors.New("invalid attribute definition")
)

// ValueTable is the storage accessor for one value relation.
type ValueTable interface {
	Insert(ctx context.Context, v model.Value) error
	ByAttributeIDs(ctx context.Context, attributeIDs []string) ([]model.Value, error)
}

// Companion names the definition field a type requires.
type Companion string

const (
	CompanionNone     Companion = ""
	CompanionUnit     Companion = "unit"
	CompanionTimeUnit Companion = "timeUnit"
	CompanionOptions  Companion = "options"
)

// Input is the caller-supplied payload of a value creation request.
type Input struct {
	Value any
	// Unit overrides the attribute's declared unit for metric and time_metric.
	Unit string
}

type validateFunc func(attr *model.Attribute, in Input) (model.Value, error)

// Handler describes one attribute type.
type Handler struct {
	Type      model.AttributeType
	Companion Companion
	// Units is the closed unit domain for metric types, nil otherwise.
	Units []string
	// Table is nil when the registry was built without storage.
	Table ValueTable

	validate validateFunc
}

// Validate checks in against attr's declared type and returns an unsaved
// typed value. Failures are *ValueError.
func (h *Handler) Validate(attr *model.Attribute, in Input) (model.Value, error) {
	v, err := h.validate(attr, in)
	if err != nil {
		return nil, err
	}
	b := v.Base()
	b.Type = h.Type
	b.AttributeID = attr.ID
	return v, nil
}

// CheckDefinition enforces that the companion fields are present exactly when
// the type requires them. Failures are *DefinitionError.
func (h *Handler) CheckDefinition(attr *model.Attribute) error {
	if h.Companion != CompanionUnit && attr.Unit != nil {
		return defError("unit", "unit is only allowed for metric type")
	}
	if h.Companion != CompanionTimeUnit && attr.TimeUnit != nil {
		return defError("timeUnit", "timeUnit is only allowed for time_metric type")
	}
	if h.Companion != CompanionOptions && len(attr.Options) > 0 {
		return defError("options", "options are only allowed for selection types")
	}

	switch h.Companion {
	case CompanionUnit:
		if attr.Unit == nil || *attr.Unit == "" {
			return defError("unit", "unit required for metric type")
		}
		if !slices.Contains(h.Units, *attr.Unit) {
			return defError("unit", "unit must be one of: "+joinList(h.Units))
		}
	case CompanionTimeUnit:
		if attr.TimeUnit == nil || *attr.TimeUnit == "" {
			return defError("timeUnit", "timeUnit required for time_metric type")
		}
		if !slices.Contains(h.Units, *attr.TimeUnit) {
			return defError("timeUnit", "timeUnit must be one of: "+joinList(h.Units))
		}
	case CompanionOptions:
		if len(attr.Options) == 0 {
			return defError("options", fmt.Sprintf("options required for %s type", h.Type))
		}
		if err := checkOptions(attr.Options); err != nil {
			return err
		}
	}
	return nil
}

// Registry maps every attribute type to its handler.
type Registry struct {
	handlers map[model.AttributeType]*Handler
	order    []model.AttributeType
}

// New builds the registry over the closed type set. tables supplies the value
// accessor per type; a nil map yields a validation-only registry.
func New(tables map[model.AttributeType]ValueTable) *Registry {
	r := &Registry{handlers: make(map[model.AttributeType]*Handler)}

	r.register(&Handler{Type: model.AttributeTypeNumber, validate: validateNumber})
	r.register(&Handler{Type: model.AttributeTypeText, validate: validateText})
	r.register(&Handler{
		Type:      model.AttributeTypeMetric,
		Companion: CompanionUnit,
		Units:     model.MetricUnits,
		validate:  validateMetric,
	})
	r.register(&Handler{Type: model.AttributeTypeDate, validate: validateDate})
	r.register(&Handler{Type: model.AttributeTypeSwitch, validate: validateSwitch})
	r.register(&Handler{
		Type:      model.AttributeTypeSelection,
		Companion: CompanionOptions,
		validate:  validateSelection(false),
	})
	r.register(&Handler{
		Type:      model.AttributeTypeMultiSelection,
		Companion: CompanionOptions,
		validate:  validateSelection(true),
	})
	r.register(&Handler{Type: model.AttributeTypeFile, validate: validateFile})
	r.register(&Handler{
		Type:      model.AttributeTypeTimeMetric,
		Companion: CompanionTimeUnit,
		Units:     model.TimeUnits,
		validate:  validateTimeMetric,
	})

	for t, h := range r.handlers {
		h.Table = tables[t]
	}
	return r
}

func (r *Registry) register(h *Handler) {
	r.handlers[h.Type] = h
	r.order = append(r.order, h.Type)
}

// Resolve returns the handler for t or ErrUnsupportedType.
func (r *Registry) Resolve(t model.AttributeType) (*Handler, error) {
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	return h, nil
}

// Types returns the closed type set in declaration order.
func (r *Registry) Types() []model.AttributeType {
	out := make([]model.AttributeType, len(r.order))
	copy(out, r.order)
	return out
}

// Handlers returns every handler in declaration order.
func (r *Registry) Handlers() []*Handler {
	out := make([]*Handler, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.handlers[t])
	}
	return out
}
