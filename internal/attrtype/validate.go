package attrtype

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stockpile-hq/stockpile/internal/model"
)

// ValueError reports a payload that fails its type's rule.
type ValueError struct {
	Type    model.AttributeType
	Message string
}

func (e *ValueError) Error() string { return e.Message }
func (e *ValueError) Unwrap() error { return ErrInvalidValue }

// DefinitionError reports an attribute definition that breaks the companion
// field invariant.
type DefinitionError struct {
	Field   string
	Message string
}

func (e *DefinitionError) Error() string { return e.Message }
func (e *DefinitionError) Unwrap() error { return ErrInvalidDef }

func valueError(t model.AttributeType, msg string) error {
	return &ValueError{Type: t, Message: msg}
}

func defError(field, msg string) error {
	return &DefinitionError{Field: field, Message: msg}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func validateNumber(_ *model.Attribute, in Input) (model.Value, error) {
	f, ok := toFloat(in.Value)
	if !ok {
		return nil, valueError(model.AttributeTypeNumber, "Value must be a number")
	}
	return &model.NumberValue{Value: f}, nil
}

func validateText(_ *model.Attribute, in Input) (model.Value, error) {
	s, ok := in.Value.(string)
	if !ok {
		return nil, valueError(model.AttributeTypeText, "Value must be a string")
	}
	return &model.TextValue{Value: s}, nil
}

func validateDate(_ *model.Attribute, in Input) (model.Value, error) {
	t, ok := toTime(in.Value)
	if !ok {
		return nil, valueError(model.AttributeTypeDate, "Value must be a valid date")
	}
	return &model.DateValue{Value: t}, nil
}

func validateMetric(attr *model.Attribute, in Input) (model.Value, error) {
	f, ok := toFloat(in.Value)
	if !ok {
		return nil, valueError(model.AttributeTypeMetric, "Value must be a number")
	}
	unit := resolveUnit(in.Unit, attr.Unit)
	if !slices.Contains(model.MetricUnits, unit) {
		return nil, valueError(model.AttributeTypeMetric, "Metric unit must be one of: "+joinList(model.MetricUnits))
	}
	return &model.MetricValue{Value: f, MetricUnit: unit}, nil
}

func validateTimeMetric(attr *model.Attribute, in Input) (model.Value, error) {
	f, ok := toFloat(in.Value)
	if !ok {
		return nil, valueError(model.AttributeTypeTimeMetric, "Value must be a number")
	}
	unit := resolveUnit(in.Unit, attr.TimeUnit)
	if !slices.Contains(model.TimeUnits, unit) {
		return nil, valueError(model.AttributeTypeTimeMetric, "Time unit must be one of: "+joinList(model.TimeUnits))
	}
	return &model.TimeMetricValue{Value: f, TimeMetricUnit: unit}, nil
}

func validateSwitch(_ *model.Attribute, in Input) (model.Value, error) {
	switch v := in.Value.(type) {
	case bool:
		return &model.SwitchValue{Value: v}, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return &model.SwitchValue{Value: b}, nil
		}
	}
	return nil, valueError(model.AttributeTypeSwitch, "Value must be a boolean")
}

func validateFile(_ *model.Attribute, in Input) (model.Value, error) {
	s, ok := in.Value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, valueError(model.AttributeTypeFile, "File link must be a non-empty string")
	}
	return &model.FileValue{Link: strings.TrimSpace(s)}, nil
}

func validateSelection(multi bool) validateFunc {
	t := model.AttributeTypeSelection
	if multi {
		t = model.AttributeTypeMultiSelection
	}
	return func(attr *model.Attribute, in Input) (model.Value, error) {
		chosen, ok := toStrings(in.Value, multi)
		if !ok {
			if multi {
				return nil, valueError(t, "Value must be a list of options")
			}
			return nil, valueError(t, "Value must be a single option")
		}
		if len(chosen) == 0 {
			return nil, valueError(t, "At least one option must be selected")
		}

		picked := make(map[string]bool, len(chosen))
		for _, c := range chosen {
			if !attr.Options.Contains(c) {
				return nil, valueError(t, "Value must be one of: "+joinList(attr.Options))
			}
			if picked[c] {
				return nil, valueError(t, "Option "+strconv.Quote(c)+" selected more than once")
			}
			picked[c] = true
		}

		v := &model.SelectionValue{Multi: multi}
		for _, opt := range attr.Options {
			v.Options = append(v.Options, &model.SelectionOption{Value: opt, Selected: picked[opt]})
		}
		return v, nil
	}
}

func toFloat(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func toStrings(raw any, multi bool) ([]string, bool) {
	switch v := raw.(type) {
	case string:
		if multi {
			return nil, false
		}
		return []string{v}, true
	case []string:
		if !multi {
			return nil, false
		}
		return v, true
	case []any:
		if !multi {
			return nil, false
		}
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func resolveUnit(requested string, declared *string) string {
	if requested != "" {
		return requested
	}
	if declared != nil {
		return *declared
	}
	return ""
}

func checkOptions(options []string) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return defError("options", "options must not be empty")
		}
		if strings.Contains(opt, model.OptionSeparator) {
			return defError("options", "options must not contain commas")
		}
		if seen[opt] {
			return defError("options", "option "+strconv.Quote(opt)+" is declared more than once")
		}
		seen[opt] = true
	}
	return nil
}

func joinList(list []string) string {
	return strings.Join(list, ", ")
}
