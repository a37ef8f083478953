package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SalesLedgerI interface {
	SalesSince(ctx context.Context, since time.Time) (int, decimal.Decimal, decimal.Decimal, error)
}

type OperatorListerI interface {
	GetList(ctx context.Context) ([]models.Operator, error)
}

// StatsService computes sales figures. Supplier costs are converted to the
// sale currency before the profit is taken.
type StatsService struct {
	ledger     SalesLedgerI
	operators  OperatorListerI
	frontend   frontend.FrontendClientI
	conversion decimal.Decimal
	now        func() time.Time
}

func NewStatsService(ledger SalesLedgerI, operators OperatorListerI, frontendClient frontend.FrontendClientI, conversion decimal.Decimal) *StatsService {
	return &StatsService{
		ledger:     ledger,
		operators:  operators,
		frontend:   frontendClient,
		conversion: conversion,
		now:        time.Now,
	}
}

func (service *StatsService) Report(ctx context.Context, since time.Time) (models.SalesReport, error) {
	count, sales, cost, err := service.ledger.SalesSince(ctx, since)
	if err != nil {
		return models.SalesReport{}, err
	}

	cost = cost.Mul(service.conversion).Round(2)
	return models.SalesReport{
		Orders: count,
		Sales:  sales,
		Cost:   cost,
		Profit: sales.Sub(cost),
	}, nil
}

// Today reports the orders completed since local midnight.
func (service *StatsService) Today(ctx context.Context) (models.SalesReport, error) {
	now := service.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return service.Report(ctx, midnight)
}

// SendDailyReport pushes the last 24 hours to every operator. Nothing is sent
// for a day without sales.
func (service *StatsService) SendDailyReport(ctx context.Context) (int, error) {
	report, err := service.Report(ctx, service.now().Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	if report.Orders == 0 {
		return 0, nil
	}

	operators, err := service.operators.GetList(ctx)
	if err != nil {
		return 0, err
	}

	text := fmt.Sprintf("Daily report: %d orders, sales %s, profit %s",
		report.Orders, report.Sales.StringFixed(2), report.Profit.StringFixed(2))
	sent := 0
	for _, operator := range operators {
		err = service.frontend.Notify(ctx, operator.AccountID, frontend.Message{Kind: frontend.SalesReport, Text: text})
		if err != nil {
			logger.Log.Warn("daily report not delivered", zap.Int64("account_id", operator.AccountID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// RunDaily sends the daily report every day at hour until ctx is done.
func (service *StatsService) RunDaily(ctx context.Context, hour int) {
	for {
		wait := time.Until(nextRun(service.now(), hour))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		sent, err := service.SendDailyReport(ctx)
		if err != nil {
			logger.Log.Error("daily report failed", zap.Error(err))
			continue
		}
		logger.Log.Info("daily report sent", zap.Int("operators", sent))
	}
}

func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
