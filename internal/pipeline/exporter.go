package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/rs/zerolog/log"
)

// Uploader pushes an exported file to remote storage.
type Uploader interface {
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ExportHeader is the column order of fact exports.
var ExportHeader = []string{
	"date", "sku", "product_name", "category", "order_count", "quantity", "revenue",
	"product_cost", "box_cost", "delivery_cost", "cod_cost", "admin_commission",
	"telesale_commission", "ad_spend", "other_costs", "total_cost", "net_profit",
}

// SnapshotExporter writes a snapshot's facts to a dated CSV file and
// optionally uploads it.
type SnapshotExporter struct {
	outputDir string
	uploader  Uploader
	keyPrefix string
}

// NewSnapshotExporter creates an exporter writing into outputDir. uploader may be nil.
func NewSnapshotExporter(outputDir string, uploader Uploader, keyPrefix string) *SnapshotExporter {
	return &SnapshotExporter{outputDir: outputDir, uploader: uploader, keyPrefix: keyPrefix}
}

// ExportFileName returns the export file name for the given day.
func ExportFileName(day time.Time) string {
	return fmt.Sprintf("daily_facts_%s.csv", day.Format("20060102"))
}

// Export writes daily_facts_YYYYMMDD.csv and returns its local path.
func (e *SnapshotExporter) Export(ctx context.Context, snap *sales.Snapshot, day time.Time) (string, error) {
	var buf bytes.Buffer
	if err := WriteFactsCSV(&buf, snap.Facts); err != nil {
		return "", fmt.Errorf("failed to encode facts: %w", err)
	}

	// Ensure output directory exists
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := ExportFileName(day)
	csvPath := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", csvPath, err)
	}
	log.Info().Str("path", csvPath).Int("facts", len(snap.Facts)).Msg("exported daily facts")

	if e.uploader != nil {
		key := path.Join(e.keyPrefix, "exports", name)
		if err := e.uploader.UploadObject(ctx, key, buf.Bytes()); err != nil {
			return csvPath, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		log.Info().Str("key", key).Msg("uploaded daily facts export")
	}

	return csvPath, nil
}

// WriteFactsCSV encodes facts with ExportHeader as the first row.
func WriteFactsCSV(w io.Writer, facts []sales.DailyFact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportHeader); err != nil {
		return err
	}

	for _, f := range facts {
		record := []string{
			f.Date.Format(sales.DateLayout),
			f.SKU,
			f.ProductName,
			f.Category,
			strconv.Itoa(f.OrderCount),
			formatAmount(f.Quantity),
			formatAmount(f.Revenue),
			formatAmount(f.ProductCost),
			formatAmount(f.BoxCost),
			formatAmount(f.DeliveryCost),
			formatAmount(f.CODCost),
			formatAmount(f.AdminCommission),
			formatAmount(f.TelesaleCommission),
			formatAmount(f.AdSpend),
			formatAmount(f.OtherCosts),
			formatAmount(f.TotalCost),
			formatAmount(f.NetProfit),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
