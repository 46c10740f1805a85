package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/events"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var outputFormat = formatJSON

func validateOutput() error {
	switch outputFormat {
	case formatJSON, formatYAML, formatText:
		return nil
	default:
		return eris.Errorf("unsupported output format %q (want json, yaml or text)", outputFormat)
	}
}

// writeResult renders v in the selected --output format.
func writeResult(w io.Writer, v any) error {
	switch outputFormat {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return nil
	case formatText:
		return writeText(w, v)
	default:
		return writeJSON(w, v)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}

func writeText(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	switch v := v.(type) {
	case []string:
		for _, s := range v {
			fmt.Fprintln(tw, s)
		}
	case []*float64:
		for _, f := range v {
			fmt.Fprintln(tw, formatAmount(f))
		}
	case []blobstore.Object:
		fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED")
		for _, o := range v {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04"))
		}
	case []events.SpeciesEvent:
		fmt.Fprintln(tw, "DATE\tSPECIES\tEVENT")
		for _, e := range v {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date, e.Species, e.EventType)
		}
	case []events.HarvestInfo:
		fmt.Fprintln(tw, "DATE\tAMOUNT\tEVENT")
		for _, h := range v {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date, formatAmount(h.Amount), h.EventType)
		}
	case []events.AGBObservation:
		fmt.Fprintln(tw, "DATE\tAGB (gC/m2)")
		for _, o := range v {
			fmt.Fprintf(tw, "%s\t%g\n", o.Date, o.AGB)
		}
	case onDateResult:
		fmt.Fprintf(tw, "field\t%s\n", v.FieldID)
		fmt.Fprintf(tw, "date\t%s\n", v.Date)
		fmt.Fprintf(tw, "event_type\t%s\n", v.EventType)
		fmt.Fprintf(tw, "harvest_amount\t%s\n", formatAmount(v.HarvestAmount))
	default:
		// No tabular form; fall back to JSON.
		return writeJSON(w, v)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "flush output")
	}
	return nil
}

func formatAmount(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}
