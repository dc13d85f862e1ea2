// Package leadcsv reads and writes lead tables in the upstream export
// format. Columns are matched by header name so reordered or extra
// columns are tolerated; a missing column leaves that field nil on
// every row. Empty cells become nil while the "N/A" sentinel is kept
// literally, since downstream scoring treats the two differently.
package leadcsv

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Headers lists the canonical column order used when writing.
var Headers = []string{
	"Company", "Industry", "Street", "City", "State", "BBB_Rating",
	"Company_Phone", "Website", "Contact_Name", "Contact_Title",
	"Contact_Email", "Contact_Phone",
}

// scoredExtra extends Headers for scored output.
var scoredExtra = []string{
	"Email_Quality", "Phone_Quality", "Title_Value",
	"Data_Completeness", "Industry_Fit", "Lead_Score", "Category",
}

// Read parses a lead table from r.
func Read(r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("leadcsv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadcsv: read header")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var leads []model.Lead
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "leadcsv: read row at line %d", line)
		}

		cell := func(name string) *string {
			idx, ok := colIdx[name]
			if !ok || idx >= len(record) {
				return nil
			}
			v := strings.TrimSpace(record[idx])
			if v == "" {
				return nil
			}
			return &v
		}

		leads = append(leads, model.Lead{
			Company:      cell("Company"),
			Industry:     cell("Industry"),
			Street:       cell("Street"),
			City:         cell("City"),
			State:        cell("State"),
			BBBRating:    cell("BBB_Rating"),
			CompanyPhone: cell("Company_Phone"),
			Website:      cell("Website"),
			ContactName:  cell("Contact_Name"),
			ContactTitle: cell("Contact_Title"),
			ContactEmail: cell("Contact_Email"),
			ContactPhone: cell("Contact_Phone"),
		})
	}
	return leads, nil
}

// ReadFile parses a lead table from the file at path.
func ReadFile(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "leadcsv: open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Write renders leads to w in the canonical column order. Nil fields
// become empty cells.
func Write(w io.Writer, leads []model.Lead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return eris.Wrap(err, "leadcsv: write header")
	}
	for i, lead := range leads {
		if err := writer.Write(leadCells(lead)); err != nil {
			return eris.Wrapf(err, "leadcsv: write row %d", i)
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "leadcsv: flush")
}

// WriteScored renders scored leads with feature, score, and category
// columns appended after the lead columns.
func WriteScored(w io.Writer, leads []model.ScoredLead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string{}, Headers...), scoredExtra...)); err != nil {
		return eris.Wrap(err, "leadcsv: write header")
	}
	for i, lead := range leads {
		row := leadCells(lead.Lead)
		for _, v := range lead.Features.Values() {
			row = append(row, formatScore(v))
		}
		row = append(row, formatScore(lead.Score), string(lead.Category))
		if err := writer.Write(row); err != nil {
			return eris.Wrapf(err, "leadcsv: write row %d", i)
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "leadcsv: flush")
}

func leadCells(lead model.Lead) []string {
	cells := make([]string, 0, len(Headers))
	for _, field := range []*string{
		lead.Company, lead.Industry, lead.Street, lead.City, lead.State,
		lead.BBBRating, lead.CompanyPhone, lead.Website, lead.ContactName,
		lead.ContactTitle, lead.ContactEmail, lead.ContactPhone,
	} {
		if field == nil {
			cells = append(cells, "")
		} else {
			cells = append(cells, *field)
		}
	}
	return cells
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
