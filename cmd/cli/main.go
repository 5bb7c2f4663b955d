package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"csvdash/adapters/excel"
	"csvdash/adapters/mailer"
	"csvdash/app"
	"csvdash/internal/charts"
	"csvdash/internal/config"
	"csvdash/internal/profiling"
	"csvdash/internal/session"
	"csvdash/internal/templating"
	"csvdash/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "csvdash-cli",
		Short:        "Explore a CSV or XLSX file and mail its rows without the dashboard",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newDescribeCmd(),
		newChartCmd(),
		newExportCmd(),
		newEmailsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// selection holds the flags shared by every command
type selection struct {
	column   string
	min, max float64
	search   string
}

func (s *selection) bind(cmd *cobra.Command, withSearch bool) {
	cmd.Flags().StringVar(&s.column, "column", "", "Column to select (default: first column)")
	cmd.Flags().Float64Var(&s.min, "min", 0, "Lower bound of the range filter (numeric columns)")
	cmd.Flags().Float64Var(&s.max, "max", 0, "Upper bound of the range filter (numeric columns)")
	if withSearch {
		cmd.Flags().StringVar(&s.search, "search", "", "Case-insensitive substring to search for in the column")
	}
}

// open loads path into a session and applies the selection flags.
func (s *selection) open(cmd *cobra.Command, path string) (*session.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := excel.NewDataReader(excel.DefaultReaderConfig()).Read(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	state := session.New()
	state.Load(ds)
	if s.column != "" {
		if err := state.Select(s.column); err != nil {
			return nil, err
		}
	}

	minSet, maxSet := cmd.Flags().Changed("min"), cmd.Flags().Changed("max")
	if minSet || maxSet {
		if !minSet || !maxSet {
			return nil, fmt.Errorf("--min and --max must be given together")
		}
		if err := state.SetRange(s.min, s.max); err != nil {
			return nil, err
		}
	}
	state.SetSearch(s.search)
	return state, nil
}

func newDescribeCmd() *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Print descriptive statistics of one column",
		Long: `Print descriptive statistics of one column over the range-filtered rows.

Example: csvdash-cli describe people.csv --column Age --min 18 --max 65`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := sel.open(cmd, args[0])
			if err != nil {
				return err
			}
			ds, err := state.Filtered()
			if err != nil {
				return err
			}
			summary, err := profiling.Summarize(ds, state.Column())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, line := range summary.Lines() {
				fmt.Fprintf(w, "%s\t%s\n", line.Name, line.Value)
			}
			fmt.Fprintf(w, "Name: %s, kind: %s\n", summary.Column, summary.Kind)
			return w.Flush()
		},
	}

	sel.bind(cmd, false)
	return cmd
}

func newChartCmd() *cobra.Command {
	var sel selection
	var kind, out string

	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Render a bar, pie or histogram chart of one column",
		Long: `Render a chart of one column over the range-filtered rows. The buckets are
printed and, with --out, the chart is written as a PNG.

Example: csvdash-cli chart people.csv --column City --kind pie --out city.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := charts.ParseKind(kind)
			if err != nil {
				return err
			}
			state, err := sel.open(cmd, args[0])
			if err != nil {
				return err
			}
			ds, err := state.Filtered()
			if err != nil {
				return err
			}
			spec, err := charts.Render(ds, state.Column(), k)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, b := range spec.Buckets {
				label := b.Label
				if b.Display != "" {
					label = b.Display
				}
				fmt.Fprintf(w, "%s\t%d\n", label, b.Count)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if out == "" {
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := charts.RenderPNG(f, spec); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	sel.bind(cmd, false)
	cmd.Flags().StringVar(&kind, "kind", "bar", "Chart kind: bar|pie|histogram")
	cmd.Flags().StringVar(&out, "out", "", "Write the chart as PNG to this path")
	return cmd
}

func newExportCmd() *cobra.Command {
	var sel selection
	var out string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the filtered and searched rows to CSV or XLSX",
		Long: `Write the rows left after the range filter and search to --out. A .xlsx
or .xlsm extension writes a workbook, anything else CSV.

Example: csvdash-cli export people.csv --column City --search oslo --out filtered_data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := sel.open(cmd, args[0])
			if err != nil {
				return err
			}
			view, err := state.View()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			write := excel.WriteCSV
			if excel.IsWorkbook(out) {
				write = excel.WriteXLSX
			}
			if err := write(f, view); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", view.Len(), out)
			return nil
		},
	}

	sel.bind(cmd, true)
	cmd.Flags().StringVar(&out, "out", "filtered_data.csv", "Output path")
	return cmd
}

func newEmailsCmd() *cobra.Command {
	var sel selection
	var template string
	var send bool

	cmd := &cobra.Command{
		Use:   "emails FILE",
		Short: "Generate one email per row and optionally send them",
		Long: `Generate one email per range-filtered row from a {Field} template and,
with --send, post each to the send endpoint.

Endpoint settings are read from the environment:
- MAIL_BASE_URL (default: http://127.0.0.1:5000)
- MAIL_GENERATOR=remote|local (default: remote)
- MAIL_SUBJECT, MAIL_CONCURRENCY, RECIPIENT_COLUMN

Example: csvdash-cli emails people.csv --template "Hi {Name}, welcome to {Location}!" --send`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			state, err := sel.open(cmd, args[0])
			if err != nil {
				return err
			}
			ds, err := state.Filtered()
			if err != nil {
				return err
			}

			client := mailer.NewClient(mailer.Config{BaseURL: appConfig.Mail.BaseURL, Timeout: appConfig.Mail.Timeout})
			var generator ports.EmailGenerator = client
			if appConfig.Mail.Generator == config.GeneratorLocal {
				generator = templating.NewGenerator()
			}
			svc := app.NewEmailService(generator, client, app.EmailServiceConfig{
				Subject:         appConfig.Mail.Subject,
				RecipientColumn: appConfig.Mail.RecipientColumn,
				Concurrency:     appConfig.Mail.Concurrency,
			})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report, err := svc.Generate(ctx, ds, template)
			if err != nil {
				return err
			}
			printReport(cmd, report)

			if !send {
				return nil
			}
			report, err = svc.Send(ctx, ds, report.Bodies())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}

	sel.bind(cmd, false)
	cmd.Flags().StringVar(&template, "template", "", "Email template with {Field} placeholders")
	cmd.Flags().BoolVar(&send, "send", false, "Send the generated emails")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func printReport(cmd *cobra.Command, report *app.BatchReport) {
	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "FAIL  row %d %s: %v\n", r.Index, r.Recipient, r.Err)
		case report.Kind == app.BatchSend:
			fmt.Fprintf(out, "SENT  row %d %s\n", r.Index, r.Recipient)
		default:
			fmt.Fprintf(out, "OK    row %d %s: %s\n", r.Index, r.Recipient, r.Body)
		}
	}
	fmt.Fprintf(out, "%s: %d succeeded, %d failed\n", report.Kind, report.Succeeded, report.Failed)
}
