package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-quality-cli/internal/leadcsv"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

// openOutput returns a writer for the given path, or stdout when the
// path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create output file %s", path)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// writeScored renders a scoring result in the requested format.
func writeScored(w io.Writer, result *scoreResult, format string) error {
	switch format {
	case "table":
		writeScoredTable(w, result)
		return nil
	case "csv":
		return leadcsv.WriteScored(w, result.Leads)
	case "xlsx":
		return writeScoredXLSX(w, result.Leads)
	default:
		return eris.Errorf("unsupported output format: %s", format)
	}
}

func writeScoredTable(w io.Writer, result *scoreResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tCONTACT\tEMAIL\tTITLE\tSCORE\tCATEGORY")
	for _, lead := range result.Leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f\t%s\n",
			displayValue(lead.Company),
			displayValue(lead.ContactName),
			displayValue(lead.ContactEmail),
			displayValue(lead.ContactTitle),
			lead.Score,
			lead.Category,
		)
	}
	tw.Flush() //nolint:errcheck

	counts := map[model.Category]int{}
	for _, lead := range result.Leads {
		counts[lead.Category]++
	}

	fmt.Fprintf(w, "\n%d leads scored (train accuracy %.1f%%, test accuracy %.1f%%)\n",
		len(result.Leads), result.Stats.TrainAccuracy*100, result.Stats.TestAccuracy*100)
	for _, cat := range []model.Category{
		model.CategoryHot, model.CategoryWarm, model.CategoryCold, model.CategoryLowPriority,
	} {
		if counts[cat] > 0 {
			fmt.Fprintf(w, "  %s: %d\n", cat, counts[cat])
		}
	}

	if len(result.Importance) > 0 {
		fmt.Fprintln(w, "\nFeature importance:")
		for _, fw := range result.Importance {
			fmt.Fprintf(w, "  %-18s %.3f\n", fw.Name, fw.Importance)
		}
	}
}

func writeScoredXLSX(w io.Writer, leads []model.ScoredLead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Scored Leads")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{
		"Company", "Industry", "City", "State", "Contact_Name", "Contact_Title",
		"Contact_Email", "Contact_Phone", "Lead_Score", "Category",
	} {
		header.AddCell().Value = name
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		for _, field := range []*string{
			lead.Company, lead.Industry, lead.City, lead.State,
			lead.ContactName, lead.ContactTitle, lead.ContactEmail, lead.ContactPhone,
		} {
			row.AddCell().Value = displayValue(field)
		}
		row.AddCell().SetFloatWithFormat(lead.Score, "0.000")
		row.AddCell().Value = string(lead.Category)
	}

	return eris.Wrap(file.Write(w), "xlsx: write")
}

// displayValue renders a lead field for output, keeping the sentinel
// visible.
func displayValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
