package bom

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"level",
	"component_reference",
	"component_name",
	"component_quantity",
	"parent_bom_reference",
	"parent_bom_name",
	"has_child_bom",
}

// WriteCSV renders flattened rows with the export column set. Quantities
// are formatted with two decimals.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Level),
			row.Reference,
			row.Name,
			fmt.Sprintf("%.2f", row.Quantity),
			row.ParentReference,
			row.ParentName,
			strconv.FormatBool(row.HasChildren),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Reference, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
