package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/repository"
	"github.com/Bessima/quicksms/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "sessions", "directory with <phone>.session files")
	cost := flag.String("cost", "0", "purchase cost of every imported account")
	dbDNS := flag.String("d", os.Getenv("DATABASE_URI"), "db dns")
	flag.Parse()

	if err := logger.Initialize("info"); err != nil {
		logger.Log.Warn(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unitCost, err := decimal.NewFromString(*cost)
	if err != nil {
		logger.Log.Fatal("invalid cost", zap.String("cost", *cost), zap.Error(err))
	}

	database, err := db.NewDB(ctx, *dbDNS)
	if err != nil {
		logger.Log.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close()

	stockRepository := repository.NewStockRepository(database)
	importer := stock.NewImporter(stockRepository, *dir, unitCost)
	result, err := importer.Import(ctx)
	if err != nil {
		logger.Log.Error("import interrupted", zap.Error(err))
	}

	available, countErr := stockRepository.CountAvailable(ctx)
	if countErr != nil {
		logger.Log.Warn("stock was not counted", zap.Error(countErr))
	}
	logger.Log.Info("import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("available", available),
	)
}
