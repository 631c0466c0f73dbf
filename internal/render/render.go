// Package render draws a tracker view as plain text.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"habits/internal/tracker"
)

// View writes the error banner, the placeholder or the card table, then
// today's status.
func View(w io.Writer, v tracker.View) error {
	if v.Error != "" {
		if _, err := fmt.Fprintf(w, "error: %s\n\n", v.Error); err != nil {
			return err
		}
	}
	if len(v.Cards) == 0 {
		_, err := fmt.Fprintln(w, v.Placeholder)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTARGET\tPROGRESS\t%\tTODAY")
	for _, c := range v.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%d/week\t%s\t%d%%\t%s\n",
			c.ID, c.Name, c.TargetFrequency, c.ProgressLabel, c.ProgressPercent, c.TodayLabel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, c := range v.Cards {
		if c.Description == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s: %s", c.Name, c.Description); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s %s\n", tracker.TodayStatusText, v.Today)
	return err
}
