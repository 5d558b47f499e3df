// Package register renders a certificate register workbook from stored
// report summaries.
package register

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/voltcert/certsync/internal/model"
)

var registerHeader = []string{
	"Certificate Number",
	"Reference",
	"Type",
	"Status",
	"Client",
	"Installation Address",
	"Inspection Date",
	"Inspector",
	"Last Updated",
}

// WriteRegister writes an XLSX certificate register for the given
// reports to w. Rows appear in the order supplied.
func WriteRegister(w io.Writer, items []model.ReportEnvelope) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Certificate Register")
	if err != nil {
		return eris.Wrap(err, "register: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range registerHeader {
		header.AddCell().Value = name
	}

	for _, item := range items {
		row := sheet.AddRow()
		row.AddCell().Value = item.CertificateNumber
		row.AddCell().Value = item.Reference
		row.AddCell().Value = kindLabel(item.Kind)
		row.AddCell().Value = string(item.Status)
		row.AddCell().Value = item.ClientName
		row.AddCell().Value = item.InstallationAddress
		row.AddCell().Value = item.InspectionDate
		row.AddCell().Value = item.InspectorName
		row.AddCell().Value = item.UpdatedAt.Format("2006-01-02 15:04")
	}

	return eris.Wrap(f.Write(w), "register: write workbook")
}

func kindLabel(kind model.ReportKind) string {
	switch kind {
	case model.ReportKindEIC:
		return "EIC"
	case model.ReportKindEICR:
		return "EICR"
	case model.ReportKindMinorWorks:
		return "Minor Works"
	default:
		return string(kind)
	}
}
