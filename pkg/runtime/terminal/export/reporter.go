package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

type TableConfig struct {
	NameWidth           int
	TypeWidth           int
	PriorityWidth       int
	SavingsWidth        int
	RecommendationWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:           36,
		TypeWidth:           18,
		PriorityWidth:       10,
		SavingsWidth:        24,
		RecommendationWidth: 54,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type scanReport struct {
	Title         string
	Subscriptions []string
	Findings      []domain.Finding
}

func (c *Reporter) Handle(title string, subscriptions []string, findings []domain.Finding) error {
	report := scanReport{
		Title:         title,
		Subscriptions: subscriptions,
		Findings:      findings,
	}

	funcMap := template.FuncMap{
		"formatRow": func(name, resourceType, priority string, savings, recommendation string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.TypeWidth, resourceType,
				c.config.PriorityWidth, priority,
				c.config.SavingsWidth, truncate(savings, c.config.SavingsWidth),
				c.config.RecommendationWidth, truncate(recommendation, c.config.RecommendationWidth))
		},
		"savings": func(f domain.Finding) string {
			if f.EstimatedMonthlyCost == "" {
				return "-"
			}
			return f.EstimatedMonthlyCost
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.TypeWidth+2),
				strings.Repeat("-", c.config.PriorityWidth+2),
				strings.Repeat("-", c.config.SavingsWidth+2),
				strings.Repeat("-", c.config.RecommendationWidth+2))
		},
	}

	tmpl := `
{{.Title}}
Subscriptions: {{range $i, $s := .Subscriptions}}{{if $i}}, {{end}}{{$s}}{{end}}
Findings: {{len .Findings}}

{{separator}}
{{formatRow "Resource" "Type" "Priority" "Savings" "Recommendation"}}
{{separator}}
{{range .Findings}}{{formatRow .Resource.Name (printf "%s" .Resource.Type) (printf "%s" .Priority) (savings .) .Recommendation}}
{{end}}{{separator}}
`

	t, err := template.New("scan").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
