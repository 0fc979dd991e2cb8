package model

import (
	"encoding/json"
	"time"
)

const (
	MetricUnitTon         = "ton"
	MetricUnitKilogram    = "kilogram"
	MetricUnitGram        = "gram"
	MetricUnitKilometer   = "kilometer"
	MetricUnitMeter       = "meter"
	MetricUnitCentimeter  = "centimeter"
	MetricUnitSquareMeter = "square_meter"
	MetricUnitCubicMeter  = "cubic_meter"
	MetricUnitMile        = "mile"
	MetricUnitFeet        = "feet"
	MetricUnitDegree      = "degree"
	MetricUnitLiter       = "liter"
)

// MetricUnits is the closed metric unit domain, in declaration order.
var MetricUnits = []string{
	MetricUnitTon, MetricUnitKilogram, MetricUnitGram, MetricUnitKilometer,
	MetricUnitMeter, MetricUnitCentimeter, MetricUnitSquareMeter, MetricUnitCubicMeter,
	MetricUnitMile, MetricUnitFeet, MetricUnitDegree, MetricUnitLiter,
}

const (
	TimeUnitSecond    = "second"
	TimeUnitMinute    = "minute"
	TimeUnitHour      = "hour"
	TimeUnitDay       = "day"
	TimeUnitWeek      = "week"
	TimeUnitFortnight = "fortnight"
	TimeUnitMonth     = "month"
	TimeUnitYear      = "year"
)

// TimeUnits is the closed time-metric unit domain, in declaration order.
var TimeUnits = []string{
	TimeUnitSecond, TimeUnitMinute, TimeUnitHour, TimeUnitDay,
	TimeUnitWeek, TimeUnitFortnight, TimeUnitMonth, TimeUnitYear,
}

// Value is one typed attribute value. The concrete types below are the only
// implementations; Type on the embedded ValueBase is the discriminator.
type Value interface {
	Base() *ValueBase
	ValueType() AttributeType
}

// ValueBase holds the columns every value relation shares.
type ValueBase struct {
	ID              string        `db:"id" json:"id"`
	AttributeID     string        `db:"attribute_id" json:"attributeId"`
	AssetInstanceID *string       `db:"asset_instance_id" json:"assetInstanceId"`
	Type            AttributeType `db:"-" json:"type"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

func (b *ValueBase) Base() *ValueBase         { return b }
func (b *ValueBase) ValueType() AttributeType { return b.Type }

type NumberValue struct {
	ValueBase
	Value float64 `db:"value" json:"value"`
}

type TextValue struct {
	ValueBase
	Value string `db:"value" json:"value"`
}

type DateValue struct {
	ValueBase
	Value time.Time `db:"value" json:"value"`
}

type MetricValue struct {
	ValueBase
	Value      float64 `db:"value" json:"value"`
	MetricUnit string  `db:"metric_unit" json:"metricUnit"`
}

type TimeMetricValue struct {
	ValueBase
	Value          float64 `db:"value" json:"value"`
	TimeMetricUnit string  `db:"time_metric_unit" json:"timeMetricUnit"`
}

type SwitchValue struct {
	ValueBase
	Value bool `db:"value" json:"value"`
}

type FileValue struct {
	ValueBase
	Link string `db:"link" json:"link"`
	// URL is a presigned read URL, filled in by the file service on read.
	URL string `db:"-" json:"url,omitempty"`
}

// SelectionValue covers both selection and multi_selection attributes.
// Options carries one row per declared option.
type SelectionValue struct {
	ValueBase
	Multi   bool               `db:"multi" json:"multi"`
	Options []*SelectionOption `db:"-" json:"options"`
}

type SelectionOption struct {
	ID          string `db:"id" json:"id"`
	SelectionID string `db:"selection_id" json:"selectionId"`
	Value       string `db:"value" json:"value"`
	Selected    bool   `db:"selected" json:"selected"`
	Position    int    `db:"position" json:"-"`
}

// Selected returns the chosen option values in declaration order.
func (v *SelectionValue) Selected() []string {
	var out []string
	for _, o := range v.Options {
		if o.Selected {
			out = append(out, o.Value)
		}
	}
	return out
}

// MarshalJSON adds the selected shortcut so callers do not need to scan Options.
func (v *SelectionValue) MarshalJSON() ([]byte, error) {
	type plain SelectionValue
	selected := v.Selected()
	if selected == nil {
		selected = []string{}
	}
	return json.Marshal(struct {
		*plain
		Selected []string `json:"selected"`
	}{(*plain)(v), selected})
}
