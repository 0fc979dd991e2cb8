package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stockpile-hq/stockpile/internal/markdown"
	"github.com/stockpile-hq/stockpile/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ReportFormatMarkdown = "md"
	ReportFormatHTML     = "html"
)

type ReportService struct {
	assetService *AssetService
	parser       *markdown.Parser
}

func NewReportService(assetService *AssetService, parser *markdown.Parser) *ReportService {
	return &ReportService{
		assetService: assetService,
		parser:       parser,
	}
}

// AssetReport renders the asset with its attributes as markdown or HTML and
// returns the content with its media type.
func (s *ReportService) AssetReport(ctx context.Context, assetID, format string) ([]byte, string, error) {
	if format == "" {
		format = ReportFormatMarkdown
	}
	if format != ReportFormatMarkdown && format != ReportFormatHTML {
		return nil, "", validationError("format", "format must be one of: md, html")
	}

	asset, err := s.assetService.AssetWithAttributes(ctx, assetID)
	if err != nil {
		return nil, "", err
	}

	source := s.Markdown(asset, time.Now().UTC())
	if format == ReportFormatMarkdown {
		return source, "text/markdown; charset=utf-8", nil
	}

	doc, err := s.parser.Render(source)
	if err != nil {
		slog.Error("failed to render report", "error", err, "asset_id", assetID)
		return nil, "", &Error{Kind: KindStorage, Message: "failed to render report", Err: err}
	}
	return markdown.Page(doc, asset.Name), "text/html; charset=utf-8", nil
}

// Markdown builds the report source with YAML frontmatter.
func (s *ReportService) Markdown(asset *model.AssetWithAttributes, generatedAt time.Time) []byte {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", strconv.Quote(asset.Name))
	fmt.Fprintf(&b, "asset_id: %s\n", strconv.Quote(asset.ID))
	fmt.Fprintf(&b, "generated_at: %s\n", generatedAt.Format(time.RFC3339))
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(asset.Name))
	if asset.Description != nil {
		fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(*asset.Description))
	}

	fmt.Fprintf(&b, "- **Type:** %s\n", s.label(string(asset.Type)))
	if asset.Quantity != nil {
		fmt.Fprintf(&b, "- **Quantity:** %d\n", *asset.Quantity)
	}
	fmt.Fprintf(&b, "- **Created:** %s\n\n", asset.CreatedAt.Format("2006-01-02"))

	b.WriteString("## Instances\n\n")
	if len(asset.Instances) == 0 {
		b.WriteString("No instances.\n\n")
	} else {
		for _, inst := range asset.Instances {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(inst.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Attributes\n\n")
	if len(asset.Attributes) == 0 {
		b.WriteString("No attributes.\n")
		return []byte(b.String())
	}

	b.WriteString("| Attribute | Type | Values |\n|---|---|---|\n")
	for _, attr := range asset.Attributes {
		values := make([]string, 0, len(attr.Values))
		for _, v := range attr.Values {
			values = append(values, s.formatValue(v))
		}
		cell := strings.Join(values, "; ")
		if cell == "" {
			cell = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(attr.Name), s.label(string(attr.Type)), escapeCell(cell))
	}

	return []byte(b.String())
}

func (s *ReportService) formatValue(v model.Value) string {
	switch v := v.(type) {
	case *model.NumberValue:
		return formatFloat(v.Value)
	case *model.TextValue:
		return v.Value
	case *model.DateValue:
		return v.Value.UTC().Format(time.RFC3339)
	case *model.MetricValue:
		return formatFloat(v.Value) + " " + s.label(v.MetricUnit)
	case *model.TimeMetricValue:
		return formatFloat(v.Value) + " " + s.label(v.TimeMetricUnit)
	case *model.SwitchValue:
		if v.Value {
			return "Yes"
		}
		return "No"
	case *model.SelectionValue:
		return strings.Join(v.Selected(), ", ")
	case *model.FileValue:
		return v.Link
	}
	return ""
}

// label turns an enum tag such as "square_meter" into "Square Meter".
// Casers keep state, so each call gets its own.
func (s *ReportService) label(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeMarkdown(s), "|", `\|`)
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}
