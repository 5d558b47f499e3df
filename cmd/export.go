package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/voltcert/certsync/internal/export"
	"github.com/voltcert/certsync/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert an installation certificate into a condition report draft",
	Long:  "Commands for validating an EIC, previewing what transfers, and producing the EICR draft document.",
}

var exportValidateCmd = &cobra.Command{
	Use:   "validate <eic.json>",
	Short: "Check an EIC for export readiness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readEICFile(args[0])
		if err != nil {
			return err
		}

		result := export.ValidateForExport(doc)
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Valid {
			return eris.New("EIC is not valid for export")
		}
		return nil
	},
}

var exportSummaryCmd = &cobra.Command{
	Use:   "summary <eic.json>",
	Short: "Preview which fields transfer to the EICR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readEICFile(args[0])
		if err != nil {
			return err
		}
		return printJSON(export.Summarize(doc))
	},
}

var exportTransformCmd = &cobra.Command{
	Use:   "transform <eic.json>",
	Short: "Produce the EICR draft document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readEICFile(args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		eicr := export.Transform(doc)

		if out == "" {
			return printJSON(eicr)
		}

		data, err := json.MarshalIndent(eicr, "", "  ")
		if err != nil {
			return eris.Wrap(err, "export: marshal eicr")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrap(err, "export: write eicr")
		}
		fmt.Printf("Wrote EICR draft to %s\n", out)
		return nil
	},
}

func readEICFile(path string) (*model.EICDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read EIC %s", path)
	}

	var doc model.EICDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse EIC %s", path)
	}
	return &doc, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	exportTransformCmd.Flags().String("out", "", "write the EICR draft to a file instead of stdout")

	exportCmd.AddCommand(exportValidateCmd, exportSummaryCmd, exportTransformCmd)
	rootCmd.AddCommand(exportCmd)
}
