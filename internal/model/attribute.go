package model

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"
)

// AttributeType is the declared type of an attribute. Each type persists its
// values in exactly one value relation.
type AttributeType string

const (
	AttributeTypeNumber         AttributeType = "number"
	AttributeTypeText           AttributeType = "text"
	AttributeTypeMetric         AttributeType = "metric"
	AttributeTypeDate           AttributeType = "date"
	AttributeTypeSwitch         AttributeType = "switch"
	AttributeTypeSelection      AttributeType = "selection"
	AttributeTypeMultiSelection AttributeType = "multi_selection"
	AttributeTypeFile           AttributeType = "file"
	AttributeTypeTimeMetric     AttributeType = "time_metric"
)

// OptionSeparator joins selection options in the options column.
const OptionSeparator = ","

type Attribute struct {
	ID             string        `db:"id" json:"id"`
	OrganizationID *string       `db:"organization_id" json:"organizationId"` // nil = global
	AuthorID       string        `db:"author_id" json:"authorId"`
	Name           string        `db:"name" json:"name"`
	Description    *string       `db:"description" json:"description,omitempty"`
	Type           AttributeType `db:"type" json:"type"`
	Unit           *string       `db:"unit" json:"unit,omitempty"`
	TimeUnit       *string       `db:"time_unit" json:"timeUnit,omitempty"`
	Options        OptionSet     `db:"options" json:"options,omitempty"`
	Required       bool          `db:"required" json:"required"`
	TrashBin       bool          `db:"trash_bin" json:"trashBin"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

// OptionSet is the declared selection domain. It is stored as a single
// comma-separated column and NULL when empty.
type OptionSet []string

func (o OptionSet) Value() (driver.Value, error) {
	if len(o) == 0 {
		return nil, nil
	}
	return strings.Join(o, OptionSeparator), nil
}

func (o *OptionSet) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into OptionSet", src)
	}
	if raw == "" {
		*o = nil
		return nil
	}
	*o = strings.Split(raw, OptionSeparator)
	return nil
}

// Contains reports whether value is one of the declared options.
func (o OptionSet) Contains(value string) bool {
	return slices.Contains(o, value)
}

// IsGlobal reports whether the attribute is visible across organizations.
func (a *Attribute) IsGlobal() bool {
	return a.OrganizationID == nil
}

// VisibleTo reports whether members of orgID may use the attribute.
func (a *Attribute) VisibleTo(orgID *string) bool {
	if a.IsGlobal() {
		return true
	}
	return orgID != nil && *a.OrganizationID == *orgID
}

// AttributeWithValues is the read-side aggregate of an attribute and the
// values stored in its type's relation. It is never persisted.
type AttributeWithValues struct {
	*Attribute
	Values []Value `json:"values"`
}
