package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agroecology/cropvision/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func printMatches(w io.Writer, matches []domain.MatchSummary) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "no matches")
		return err
	}
	tw := newTable(w, "KEY", "NAME", "CATEGORY", "CONFIDENCE", "MATCH")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", m.Key, m.Name, m.Category, m.Confidence, m.MatchType)
	}
	return tw.Flush()
}

func printTreatments(w io.Writer, treatments []domain.TreatmentRecommendation) error {
	if len(treatments) == 0 {
		_, err := fmt.Fprintln(w, "no treatments recorded")
		return err
	}
	tw := newTable(w, "PRIORITY", "METHOD", "TREATMENT", "EFFECTIVENESS", "TIMING")
	for _, t := range treatments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", t.Priority, t.Method, t.Treatment.Treatment, t.Effectiveness, t.Timing)
	}
	return tw.Flush()
}

func printExperts(w io.Writer, experts []domain.ExpertResource) error {
	if len(experts) == 0 {
		_, err := fmt.Fprintln(w, "no experts found")
		return err
	}
	tw := newTable(w, "NAME", "TYPE", "CONTACT", "SPECIALIZATION")
	for _, e := range experts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Type, e.Contact, e.Specialization)
	}
	return tw.Flush()
}
