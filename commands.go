package geosynth

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCommand creates the Cobra command tree for the dataset CLI.
// The returned command can stand alone or be attached to a parent
// root command.
//
// Commands provided:
//   - download <dtypes...>  fetch and extract archives
//   - datatypes             list the data type catalog
//   - scenes                list downloaded scenes and their assets
//   - status                show per-archive completeness
//
// The CLI only composes library calls and renders progress and errors;
// it owns no logic of its own.
func NewCommand(cfg Config, opts ...ManagerOption) *cobra.Command {
	var quiet bool

	var mgr Manager

	cmd := &cobra.Command{
		Use:   "geosynth",
		Short: "Access the GeoSynth dataset",
		Long:  "Download and inspect the GeoSynth multi-modal imagery dataset.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			mgr, err = NewManager(cfg, opts...)
			if err != nil {
				return fmt.Errorf("failed to initialize manager: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	cmd.AddCommand(downloadCmd(&mgr, &quiet))
	cmd.AddCommand(datatypesCmd())
	cmd.AddCommand(scenesCmd(&mgr))
	cmd.AddCommand(statusCmd(&mgr))

	return cmd
}

func downloadCmd(mgr *Manager, quiet *bool) *cobra.Command {
	var (
		force       bool
		noCleanup   bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "download <dtypes...>",
		Short: "Download dataset archives",
		Long: "Download and extract dataset archives for the given data types.\n" +
			"Accepts data type names or the group aliases \"all\" and \"non-hdr\".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var opts []DownloadOption
			if force {
				opts = append(opts, WithForce())
			}
			if noCleanup {
				opts = append(opts, WithKeepArchives())
			}
			if concurrency > 0 {
				opts = append(opts, WithConcurrency(concurrency))
			}

			if !*quiet {
				opts = append(opts, WithProgress(newProgressPrinter(cmd.OutOrStdout())))
			}

			report, err := (*mgr).Download(ctx, args, opts...)
			if report != nil && !*quiet {
				printReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Downloaded contents to %s\n", (*mgr).Dir())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force a re-download, despite locally cached files")
	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "Keep zip files after extraction")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel archive downloads (default 3)")
	return cmd
}

func datatypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datatypes",
		Short: "List the data type catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATA TYPE\tEXT\tKIND\tHDR\tARCHIVE")
			for _, dt := range AllDataTypes() {
				hdr := ""
				if dt.IsHDR() {
					hdr = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", dt, dt.Ext(), dt.Kind(), hdr, dt.ArchiveName())
			}
			return w.Flush()
		},
	}
}

func scenesCmd(mgr *Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List downloaded scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := (*mgr).Dataset()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCENE\tASSETS")
			for _, scene := range ds.Scenes() {
				names := make([]string, 0, len(scene.DataTypes()))
				for _, dt := range scene.DataTypes() {
					names = append(names, string(dt))
				}
				fmt.Fprintf(w, "%s\t%s\n", scene.ID(), strings.Join(names, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scene(s) under %s\n", ds.Len(), ds.Dir())
			return nil
		},
	}
}

func statusCmd(mgr *Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "status [dtypes...]",
		Short: "Show per-archive completeness",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := (*mgr).Status(args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ARCHIVE\tCOMPLETE\tEXTRACTED AT")
			for _, s := range statuses {
				when := "-"
				if s.Complete {
					when = s.ExtractedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%v\t%s\n", s.Archive.Name, s.Complete, when)
			}
			return w.Flush()
		},
	}
}

// progressPrinter renders one updating line per archive phase. With
// several archives in flight the lines interleave; each is tagged with
// its archive name so the output stays readable.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	started map[string]time.Time
}

func newProgressPrinter(w io.Writer) func(DownloadProgress) {
	p := &progressPrinter{w: w, started: make(map[string]time.Time)}
	return p.update
}

func (p *progressPrinter) update(dp DownloadProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch dp.Phase {
	case PhaseFetch:
		start, ok := p.started[dp.Archive]
		if !ok {
			start = time.Now()
			p.started[dp.Archive] = start
		}
		renderProgress(p.w, dp.Archive, dp.BytesCompleted, dp.BytesTotal, start)
	case PhaseExtract:
		fmt.Fprintf(p.w, "\r\x1b[K%s: extracting %d/%d", dp.Archive, dp.FilesExtracted, dp.FilesTotal)
	case PhaseDone:
		fmt.Fprintf(p.w, "\r\x1b[K%s: done\n", dp.Archive)
		delete(p.started, dp.Archive)
	}
}

// printReport writes the per-archive outcome table after a run.
func printReport(w io.Writer, report *Report) {
	results := append([]ArchiveResult(nil), report.Results...)
	sort.Slice(results, func(i, j int) bool { return results[i].Archive.Name < results[j].Archive.Name })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARCHIVE\tOUTCOME\tFETCHED\tDETAIL")
	for _, res := range results {
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Archive.Name, res.Outcome, formatSize(res.BytesFetched), detail)
	}
	tw.Flush()
}

// renderProgress renders a single archive's progress bar.
// Format: depth [============>         ] 45% (5.2 MB/s, elapsed: 30s)
func renderProgress(w io.Writer, name string, current, total int64, startTime time.Time) {
	elapsed := time.Since(startTime)

	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}

	var speed float64
	if elapsed.Seconds() > 0 && current > 0 {
		speed = float64(current) / elapsed.Seconds()
	}

	const barWidth = 30
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var bar string
	if filled >= barWidth {
		bar = strings.Repeat("=", barWidth)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barWidth-filled-1)
	} else {
		bar = ">" + strings.Repeat(" ", barWidth-1)
	}

	fmt.Fprintf(w, "\r\x1b[K%s [%s] %.0f%% (%s, elapsed: %s)",
		name, bar, pct, formatSpeed(speed), formatDuration(elapsed))
}

// formatSize formats a byte count as B/KB/MB/GB.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatSpeed formats bytes per second as KB/s or MB/s.
func formatSpeed(bytesPerSec float64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	if bytesPerSec >= MB {
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/MB)
	}
	if bytesPerSec >= KB {
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/KB)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}

// formatDuration formats a duration as human-readable text
// (e.g., "5s", "2m 30s", "1h 5m").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if mins > 0 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
