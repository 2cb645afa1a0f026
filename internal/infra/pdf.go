package infra

// pdf.go — aggregated-BOM report rendering using go-pdf/fpdf.
// One A4 page header plus a table of material totals; pages break
// automatically for large assemblies.

import (
	"fmt"
	"io"
	"sort"
	"time"

	"bomtree/internal/dto"

	"github.com/go-pdf/fpdf"
)

// WriteBomPDF renders the rolled-up material totals for one assembly and
// streams the document to w. materialNames maps material id → display name;
// ids without an entry are printed raw.
func WriteBomPDF(w io.Writer, assemblyName string, agg *dto.AggregatedBomResponse, materialNames map[string]string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Bill of Materials", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, assemblyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals table ─────────────────────────────────────────────────────────
	col1 := contentW * 0.56 // material
	col2 := contentW * 0.28 // quantity
	col3 := contentW * 0.16 // unit

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Material", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Total quantity", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "Unit", "B", 1, "R", false, 0, "")

	// Deterministic row order: by display name, then id.
	ids := make([]string, 0, len(agg.Totals))
	for id := range agg.Totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := displayName(ids[i], materialNames), displayName(ids[j], materialNames)
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})

	pdf.SetFont("Helvetica", "", 9)
	for _, id := range ids {
		total := agg.Totals[id]
		pdf.CellFormat(col1, 6, displayName(id, materialNames), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, total.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, total.Unit, "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%d materials — root %s", len(ids), agg.RootID), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func displayName(id string, names map[string]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
