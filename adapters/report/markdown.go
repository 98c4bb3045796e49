// Package report renders extraction results as Markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goinsight/domain/insight"
	"goinsight/internal/extractor"
)

// Renderer formats an ExtractionReport for humans
type Renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *extractor.ExtractionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Insight Extraction Report\n\n")
	fmt.Fprintf(&b, "Extraction `%s` over data fingerprint `%s`.\n\n", report.ExtractionID, report.Fingerprint)
	fmt.Fprintf(&b, "%d patterns detected, %d insight candidates, %d accepted.\n\n",
		len(report.Patterns), report.Candidates, len(report.Insights))

	if len(report.Insights) > 0 {
		b.WriteString("## Accepted Insights\n\n")
		for i, ins := range report.Insights {
			writeInsight(&b, i+1, &ins)
		}
	}

	if len(report.MetaInsights) > 0 {
		b.WriteString("## Meta-Insights\n\n")
		for _, m := range report.MetaInsights {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", m.Title, m.Description)
			fmt.Fprintf(&b, "- Synthesis method: %s\n", m.SynthesisMethod)
			fmt.Fprintf(&b, "- Components: %d\n", len(m.ComponentInsights))
			fmt.Fprintf(&b, "- Novelty: %.2f\n", m.Novelty)
			for _, p := range m.EmergentProperties {
				fmt.Fprintf(&b, "- Emergent: %s\n", p)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// CausalMarkdown renders causal findings as a Markdown document
func (r *Renderer) CausalMarkdown(insights []insight.CausalInsight) string {
	var b strings.Builder
	b.WriteString("# Causal Structure Report\n\n")
	if len(insights) == 0 {
		b.WriteString("No causal relationships cleared the significance threshold.\n")
		return b.String()
	}
	for _, ci := range insights {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", ci.Title, ci.Description)
		fmt.Fprintf(&b, "- Strength: %.2f\n- Significance: %.4f\n- Mechanism: %s\n\n",
			ci.Strength, ci.Significance, ci.Mechanism)
	}
	return b.String()
}

// HTML renders the report as a standalone HTML fragment
func (r *Renderer) HTML(report *extractor.ExtractionReport) []byte {
	md := r.Markdown(report)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func writeInsight(b *strings.Builder, rank int, ins *insight.Insight) {
	fmt.Fprintf(b, "### %d. %s\n\n%s\n\n", rank, ins.Title, ins.Description)
	fmt.Fprintf(b, "- Type: %s\n- Confidence: %.2f\n- Importance: %.2f\n", ins.InsightType, ins.Confidence, ins.Importance)
	if ins.ValidationScore != nil {
		fmt.Fprintf(b, "- Validation: %.2f\n", *ins.ValidationScore)
	}
	for _, rec := range ins.Recommendations {
		fmt.Fprintf(b, "- Recommendation: %s\n", rec)
	}
	b.WriteString("\n")
}
