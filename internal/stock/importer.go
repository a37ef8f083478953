package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	sessionExt   = ".session"
	metadataExt  = ".json"
	processedDir = "processed"
	importOrigin = "IMPORT_SCRIPT"
)

type StockStoreI interface {
	Add(ctx context.Context, account models.StockAccount) (bool, error)
}

// metadata is the optional sidecar file shipped with a session.
type metadata struct {
	AppID   json.Number `json:"app_id"`
	AppHash string      `json:"app_hash"`
	TwoFA   *string     `json:"twoFA"`
}

type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer moves exported sessions from a directory into the stock table.
type Importer struct {
	store StockStoreI
	dir   string
	cost  decimal.Decimal
	now   func() time.Time
}

func NewImporter(store StockStoreI, dir string, cost decimal.Decimal) *Importer {
	return &Importer{store: store, dir: dir, cost: cost, now: time.Now}
}

// Import handles every <phone>.session file of the directory. Handled files,
// imported or already in stock, are moved to processed/ so a second run does
// not see them again. Broken sessions stay in place.
func (importer *Importer) Import(ctx context.Context) (Result, error) {
	var result Result

	files, err := filepath.Glob(filepath.Join(importer.dir, "*"+sessionExt))
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, nil
	}
	if err = os.MkdirAll(filepath.Join(importer.dir, processedDir), 0o755); err != nil {
		return result, err
	}

	for _, file := range files {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		added, err := importer.importFile(ctx, file)
		switch {
		case err != nil:
			result.Failed++
			logger.Log.Warn("session not imported", zap.String("file", file), zap.Error(err))
			continue
		case added:
			result.Imported++
		default:
			result.Skipped++
		}

		if err = importer.moveProcessed(file); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (importer *Importer) importFile(ctx context.Context, file string) (bool, error) {
	phone := strings.TrimSuffix(filepath.Base(file), sessionExt)

	session, err := ReadSessionFile(file)
	if err != nil {
		return false, err
	}
	encoded, err := session.StringSession()
	if err != nil {
		return false, err
	}

	meta, err := readMetadata(strings.TrimSuffix(file, sessionExt) + metadataExt)
	if err != nil {
		logger.Log.Warn("session metadata unreadable", zap.String("phone", phone), zap.Error(err))
	}

	added, err := importer.store.Add(ctx, models.StockAccount{
		Phone:         phone,
		SessionString: encoded,
		Password2FA:   meta.TwoFA,
		Cost:          importer.cost,
		Origin:        importOrigin,
		AddedAt:       importer.now(),
		Status:        models.StockAvailable,
	})
	if err != nil {
		return false, fmt.Errorf("store %s: %w", phone, err)
	}
	if !added {
		logger.Log.Info("account already in stock", zap.String("phone", phone))
	}
	return added, nil
}

func readMetadata(path string) (metadata, error) {
	var meta metadata
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return meta, nil
		}
		return meta, err
	}
	err = json.Unmarshal(content, &meta)
	return meta, err
}

func (importer *Importer) moveProcessed(file string) error {
	target := filepath.Join(importer.dir, processedDir)
	if err := os.Rename(file, filepath.Join(target, filepath.Base(file))); err != nil {
		return err
	}

	sidecar := strings.TrimSuffix(file, sessionExt) + metadataExt
	if _, err := os.Stat(sidecar); err == nil {
		return os.Rename(sidecar, filepath.Join(target, filepath.Base(sidecar)))
	}
	return nil
}
