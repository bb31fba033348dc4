package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"starfieldpedia/internal/core"
	"starfieldpedia/internal/index"
	"starfieldpedia/pkg/domain"
)

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) renderPlanets(planets []domain.Planet, resource string, suggestions []string) error {
	if a.jsonOutput {
		return a.writeJSON(planets)
	}
	if len(planets) == 0 {
		if resource == "" {
			_, err := fmt.Fprintln(a.stdout, "no planets loaded")
			return err
		}
		msg := fmt.Sprintf("no planets offer %s", resource)
		if len(suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(suggestions, ", "))
		}
		_, err := fmt.Fprintln(a.stdout, msg)
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYSTEM\tPLANET\tTYPE\tGRAVITY\tRESOURCES")
	for _, p := range planets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.System, p.Name(), p.Record.Type, formatFloat(p.Record.Gravity), resourceList(p))
	}
	return tw.Flush()
}

func (a *app) renderPlanet(p domain.Planet) error {
	if a.jsonOutput {
		return a.writeJSON(p)
	}
	r := p.Record
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "System:\t%s\n", p.System)
	fmt.Fprintf(tw, "Planet:\t%s\n", r.Name)
	fmt.Fprintf(tw, "Type:\t%s\n", r.Type)
	fmt.Fprintf(tw, "Gravity:\t%s\n", formatFloat(r.Gravity))
	fmt.Fprintf(tw, "Temperature:\t%s\n", r.Temperature)
	fmt.Fprintf(tw, "Atmosphere:\t%s\n", r.Atmosphere)
	fmt.Fprintf(tw, "Magnetosphere:\t%s\n", r.Magnetosphere)
	fmt.Fprintf(tw, "Traits:\t%s\n", strings.Join(r.Traits, ", "))
	fmt.Fprintf(tw, "Resources:\t%s\n", resourceList(p))
	if r.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", r.Notes)
	}
	for _, o := range r.Organisms() {
		label := "Fauna"
		if o.Kind == domain.KindFlora {
			label = "Flora"
		}
		fmt.Fprintf(tw, "%s:\t%s\t%s\t%s\toutpost %s\n",
			label, o.Name, o.Temperament, o.BiomesText(), o.OutpostText())
	}
	return tw.Flush()
}

func (a *app) renderTree(nodes []treeNode) error {
	if a.jsonOutput {
		return a.writeJSON(nodes)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, n := range nodes {
		writeTreeNode(tw, n, 0)
	}
	return tw.Flush()
}

func writeTreeNode(w io.Writer, n treeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	marker := " "
	if n.Expandable {
		marker = "+"
		if n.State == index.Expanded {
			marker = "-"
		}
	}
	switch {
	case n.Resource != nil:
		row := n.Resource
		fmt.Fprintf(w, "%s%s %s\t%s\t%s\t%s\t%s\t%s\n", indent, marker, row.Name,
			row.Element, row.Rarity, row.State, formatFloat(row.Weight), formatFloat(row.Value))
	case n.Provenance != nil:
		prov := n.Provenance
		fmt.Fprintf(w, "%s%s %s\t%s\t%s\toutpost %s\n", indent, marker, prov.Name,
			prov.Temperament, prov.Biomes, prov.Outpost)
	default:
		fmt.Fprintf(w, "%s%s %s\n", indent, marker, n.Key)
	}
	if len(n.Columns) > 0 {
		fmt.Fprintf(w, "%s  # %s\n", indent, strings.Join(n.Columns, "\t"))
	}
	for _, c := range n.Children {
		writeTreeNode(w, c, depth+1)
	}
}

func (a *app) renderResources(defs []domain.ResourceDefinition) error {
	if a.jsonOutput {
		return a.writeJSON(defs)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tELEMENT\tRARITY\tSTATE\tWEIGHT\tVALUE")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", def.Name, def.Category, def.ElementName,
			def.Rarity, def.StateOfMatter, formatFloat(def.Weight), formatFloat(def.Value))
	}
	return tw.Flush()
}

type summary struct {
	Generation string   `json:"generation"`
	LoadedAt   string   `json:"loaded_at"`
	Systems    int      `json:"systems"`
	Planets    int      `json:"planets"`
	Documents  int      `json:"documents"`
	Skipped    []string `json:"skipped,omitempty"`
}

func (a *app) renderSummary(svc *core.Service) error {
	report := svc.Report()
	s := summary{
		Generation: svc.Generation(),
		LoadedAt:   svc.LoadedAt().Format(time.RFC3339),
		Systems:    len(svc.Systems()),
		Planets:    len(svc.Reset()),
		Documents:  report.Documents,
	}
	for _, docErr := range report.Errors {
		s.Skipped = append(s.Skipped, docErr.Error())
	}
	if a.jsonOutput {
		return a.writeJSON(s)
	}
	_, err := fmt.Fprintf(a.stdout, "generation %s: %d systems, %d planets from %d documents (%d skipped)\n",
		s.Generation, s.Systems, s.Planets, s.Documents, len(s.Skipped))
	return err
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
