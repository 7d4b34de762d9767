package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/history"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		table          bool
		page, pageSize int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear scan history",
		Long: `Show or clear scan history.

Subcommands:
  list          - List scans, newest first
  trend         - Risk score per scan, oldest first
  distribution  - Risk level counts per content type
  clear         - Remove all history`,
	}
	cmd.PersistentFlags().BoolVar(&table, "table", false, "Print a table instead of JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List scans, newest first",
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			recs := a.store.Records()
			if page > 0 {
				res := history.Paginate(recs, page, pageSize)
				if !table {
					return a.printJSON(res)
				}
				recs = res.Data
			} else if !table {
				return a.printJSON(recs)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCAN\tWHEN\tMODE\tNAME\tSIZE\tRISK\tLEVEL")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(r.ScanID), when(r), r.Mode, name(r.FileInfo), size(r), r.Detection.RiskScore, r.Detection.RiskLevel)
			}
			return w.Flush()
		}),
	}

	list.Flags().IntVar(&page, "page", 0, "Page number (1-based); 0 lists everything")
	list.Flags().IntVar(&pageSize, "page-size", history.DefaultPageSize, "Scans per page")

	trend := &cobra.Command{
		Use:   "trend",
		Short: "Risk score per scan, oldest first",
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			points := a.store.Trend()
			if !table {
				return a.printJSON(points)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tDATE\tTYPE\tRISK")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Label, p.Date, p.Type, p.Risk)
			}
			return w.Flush()
		}),
	}

	distribution := &cobra.Command{
		Use:   "distribution",
		Short: "Risk level counts per content type",
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			rows := a.store.Distribution()
			if !table {
				return a.printJSON(rows)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tHIGH\tMEDIUM\tLOW")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Type, r.High, r.Medium, r.Low)
			}
			return w.Flush()
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all history",
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			n := a.store.Len()
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "cleared %d scans\n", n)
			return nil
		}),
	}

	cmd.AddCommand(list, trend, distribution, clearCmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func when(r detection.ScanRecord) string {
	if r.Timestamp.IsZero() {
		return "-"
	}
	return humanize.Time(r.Timestamp)
}

func name(fi detection.FileInfo) string {
	if fi.Name == nil {
		return "-"
	}
	return strings.ReplaceAll(*fi.Name, "\t", " ")
}

func size(r detection.ScanRecord) string {
	if r.FileInfo.SizeBytes == nil {
		return "-"
	}
	if r.Mode == detection.ModeText {
		return humanize.Comma(*r.FileInfo.SizeBytes) + " chars"
	}
	return humanize.Bytes(uint64(*r.FileInfo.SizeBytes))
}
