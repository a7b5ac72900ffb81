package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load every dataset and print a summary",
	Long:  "Loads the configured sources, checking that ids are unique within each dataset, and prints row counts and the year domain.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := loadStore(ctx, cfg, "load")
		if err != nil {
			return err
		}
		formatStoreSummary(os.Stdout, cfg.Sources, store)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// formatStoreSummary writes one row per dataset plus the year domain to out.
func formatStoreSummary(out io.Writer, src feature.Sources, store *feature.Store) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATASET\tFORMAT\tROWS\tSOURCE")
	_, _ = fmt.Fprintln(w, "-------\t------\t----\t------")

	rows := []struct {
		name string
		src  feature.Source
		n    int
	}{
		{"tracts", src.Tracts, store.Tracts.Len()},
		{"zones", src.Zones, store.Zones.Len()},
		{"burden", src.Burden, store.Burden.Len()},
		{"income", src.Income, store.Income.Len()},
	}
	for _, r := range rows {
		format, err := r.src.ResolveFormat()
		if err != nil {
			format = "?"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.name, format, r.n, truncate(fetcher.Redact(r.src.URL), 60))
	}
	_ = w.Flush()

	minYear, maxYear := store.YearRange()
	_, _ = fmt.Fprintf(out, "\nyears: %d-%d\n", minYear, maxYear)
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
