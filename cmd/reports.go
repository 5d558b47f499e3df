package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voltcert/certsync/internal/model"
	"github.com/voltcert/certsync/internal/register"
	"github.com/voltcert/certsync/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage stored certificate reports",
	Long:  "Commands for listing, viewing, creating, deleting and importing certificate reports.",
}

// -- reports list --

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports for an owner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		result := st.List(ctx, owner, report.ListOptions{Page: page, PageSize: pageSize})
		if len(result.Items) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		formatReportsList(os.Stdout, result)
		return nil
	},
}

// -- reports show --

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print the full payload of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		payload := st.GetPayload(ctx, args[0], owner)
		if payload == nil {
			return eris.Errorf("report %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

// -- reports create --

var reportsCreateCmd = &cobra.Command{
	Use:   "create <payload.json>",
	Short: "Create a report from a payload file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		kind, _ := cmd.Flags().GetString("kind")
		subject, _ := cmd.Flags().GetString("subject")

		payload, err := readPayloadFile(args[0])
		if err != nil {
			return err
		}

		result := st.Create(ctx, owner, model.ReportKind(kind), payload, subject)
		if !result.Success {
			return eris.Errorf("create failed: %s", result.Error)
		}

		if result.Recovered {
			fmt.Printf("Updated existing report %s (duplicate certificate number)\n", result.ID)
		} else {
			fmt.Printf("Created report %s\n", result.ID)
		}
		return nil
	},
}

// -- reports delete --

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Soft-delete a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		result := st.SoftDelete(ctx, args[0], owner)
		if !result.Success {
			return eris.Errorf("delete failed: %s", result.Error)
		}

		if result.AlreadyDeleted {
			fmt.Println("Report was already deleted.")
		} else {
			fmt.Println("Report deleted.")
		}
		return nil
	},
}

// -- reports import --

var reportsImportCmd = &cobra.Command{
	Use:   "import <file.json>...",
	Short: "Bulk import report payload files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		kind, _ := cmd.Flags().GetString("kind")

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Import.MaxConcurrent)

		for _, path := range args {
			path := path
			g.Go(func() error {
				payload, err := readPayloadFile(path)
				if err != nil {
					return err
				}

				result := st.Create(gctx, owner, model.ReportKind(kind), payload, "")
				if !result.Success {
					return eris.Errorf("import %s: %s", path, result.Error)
				}

				zap.L().Info("report imported",
					zap.String("file", path),
					zap.String("report_id", result.ID),
					zap.Bool("recovered", result.Recovered),
				)
				return nil
			})
		}

		return g.Wait()
	},
}

// -- reports register --

var reportsRegisterCmd = &cobra.Command{
	Use:   "register <out.xlsx>",
	Short: "Export the certificate register workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		owner, _ := cmd.Flags().GetString("owner")
		result := st.List(ctx, owner, report.ListOptions{Limit: 10000})

		f, err := os.Create(args[0])
		if err != nil {
			return eris.Wrap(err, "reports register: create file")
		}
		defer f.Close() //nolint:errcheck

		if err := register.WriteRegister(f, result.Items); err != nil {
			return err
		}

		fmt.Printf("Wrote %d reports to %s\n", len(result.Items), args[0])
		return nil
	},
}

func readPayloadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read payload %s", path)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, eris.Wrapf(err, "parse payload %s", path)
	}
	return payload, nil
}

// formatReportsList writes a tabular list of reports to w.
func formatReportsList(out io.Writer, result report.ListResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tCERT_NO\tSTATUS\tCLIENT\tUPDATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t------\t------\t-------")

	for _, item := range result.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Kind, item.CertificateNumber, item.Status,
			item.ClientName, item.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\n%d of %d reports", len(result.Items), result.TotalCount)
	if result.HasMore {
		_, _ = fmt.Fprint(out, " (more available)")
	}
	_, _ = fmt.Fprintln(out)
}

func init() {
	reportsCmd.PersistentFlags().String("owner", "", "owner identity (required)")
	_ = reportsCmd.MarkPersistentFlagRequired("owner")

	reportsListCmd.Flags().Int("page", 1, "page number")
	reportsListCmd.Flags().Int("page-size", 20, "reports per page")

	reportsCreateCmd.Flags().String("kind", "eicr", "report kind (eic, eicr, minor_works)")
	reportsCreateCmd.Flags().String("subject", "", "subject id to associate")

	reportsImportCmd.Flags().String("kind", "eicr", "report kind for all imported files")

	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsCreateCmd,
		reportsDeleteCmd, reportsImportCmd, reportsRegisterCmd)
	rootCmd.AddCommand(reportsCmd)
}
