package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hotel-audit/hotelaudit/internal/app"
	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/dashboard"
	"github.com/hotel-audit/hotelaudit/internal/platform/db"
)

type statusOptions struct {
	hotelID    int64
	reportType string
	status     string
	at         string
	output     string
}

var statusOpts statusOptions

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Evaluate submission status for every hotel and report target",
	Long: `status runs the compliance engine directly against PostgreSQL without Redis.
Use --at to evaluate at another instant, for example to check what
the dashboard showed at a past deadline.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	f := statusCmd.Flags()
	f.Int64Var(&statusOpts.hotelID, "hotel-id", 0, "only this hotel")
	f.StringVar(&statusOpts.reportType, "report-type", "", "only this report type")
	f.StringVar(&statusOpts.status, "status", "", "only this status (Menunggu, Tepat Waktu, Terlambat, Processing Error)")
	f.StringVar(&statusOpts.at, "at", "", "evaluation instant in RFC3339 (default now)")
	f.StringVarP(&statusOpts.output, "output", "o", "table", "output format: table or json")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	filters, err := statusOpts.filters()
	if err != nil {
		return err
	}
	at, err := statusOpts.instant(loc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{ApplicationName: "hotelauditctl", MaxConns: int32(cfg.ComplianceConcurrency + 2)})
	if err != nil {
		return err
	}
	defer pool.Close()

	services, err := app.NewServices(cfg, pool, nil, nil, logger, dashboard.WithClock(func() time.Time { return at }))
	if err != nil {
		return err
	}
	records, err := services.Dashboard.Status(ctx, filters)
	if err != nil {
		return err
	}
	return writeRecords(cmd.OutOrStdout(), statusOpts.output, records, loc)
}

func (o statusOptions) filters() (compliance.Filters, error) {
	var f compliance.Filters
	if o.hotelID < 0 {
		return f, fmt.Errorf("--hotel-id must be positive")
	}
	if o.hotelID > 0 {
		id := o.hotelID
		f.HotelID = &id
	}
	if o.reportType != "" {
		rt := compliance.ReportType(o.reportType)
		if !compliance.Known(rt) {
			return f, fmt.Errorf("unknown report type %q", o.reportType)
		}
		f.ReportType = rt
	}
	if o.status != "" {
		status, err := compliance.ParseStatus(o.status)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	return f, nil
}

func (o statusOptions) instant(loc *time.Location) (time.Time, error) {
	if o.at == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, o.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t.In(loc), nil
}

func writeRecords(w io.Writer, format string, records []compliance.StatusRecord, loc *time.Location) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOTEL\tREPORT\tSTATUS\tLAST SUBMISSION\tNEXT DEADLINE")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.HotelName, r.ReportName, r.Status, localTime(r.LastSubmission, loc), localTime(r.NextDeadline, loc))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func localTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
