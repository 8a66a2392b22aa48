package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/labstock/labstock/internal/ingest"
	"github.com/labstock/labstock/internal/stock"
)

// Default file names looked up in the data directory at boot, matching the
// source system's yearly exports.
const (
	InventoryFileName = "tonkho.csv"
	OutboundFileName  = "xuatkho.csv"
)

// LoadDataDir seeds the store from CSV files in dir. Missing files leave
// the store empty, which is a valid state; malformed files are an error so
// a bad deploy does not silently serve nothing.
func LoadDataDir(logger *slog.Logger, store *stock.Store, dir string) error {
	if dir == "" {
		return nil
	}
	inventory, invOK, err := loadInventoryFile(logger, filepath.Join(dir, InventoryFileName))
	if err != nil {
		return err
	}
	outbound, outOK, err := loadOutboundFile(logger, filepath.Join(dir, OutboundFileName))
	if err != nil {
		return err
	}
	if !invOK && !outOK {
		logger.Info("no seed data found", slog.String("dir", dir))
		return nil
	}
	version := store.Replace(inventory, outbound)
	logger.Info("seed data loaded",
		slog.Int64("version", version),
		slog.Int("inventory_rows", len(inventory)),
		slog.Int("outbound_rows", len(outbound)))
	return nil
}

func loadInventoryFile(logger *slog.Logger, path string) ([]stock.InventoryRecord, bool, error) {
	f, ok, err := openSeedFile(path)
	if err != nil || !ok {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()
	records, diags, err := ingest.ParseInventory(f, ingest.FormatCSV)
	if err != nil {
		return nil, false, fmt.Errorf("upload: seed %s: %w", path, err)
	}
	warnDiagnostics(logger, path, diags)
	return records, true, nil
}

func loadOutboundFile(logger *slog.Logger, path string) ([]stock.OutboundRecord, bool, error) {
	f, ok, err := openSeedFile(path)
	if err != nil || !ok {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()
	records, diags, err := ingest.ParseOutbound(f, ingest.FormatCSV)
	if err != nil {
		return nil, false, fmt.Errorf("upload: seed %s: %w", path, err)
	}
	warnDiagnostics(logger, path, diags)
	return records, true, nil
}

func openSeedFile(path string) (*os.File, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("upload: open seed file: %w", err)
	}
	return f, true, nil
}

func warnDiagnostics(logger *slog.Logger, path string, diags ingest.Diagnostics) {
	if len(diags) > 0 {
		logger.Warn("seed file coercion warnings",
			slog.String("file", path),
			slog.Int("count", len(diags)))
	}
}
