package service

import (
	"context"
	"errors"
	"sort"

	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type StepQuote struct {
	Product string          `json:"product"`
	Region  string          `json:"region"`
	Price   decimal.Decimal `json:"price"`
}

type PackQuote struct {
	Name  string          `json:"name"`
	Title string          `json:"title"`
	Steps []StepQuote     `json:"steps"`
	Total decimal.Decimal `json:"total"`
}

// QuotePack prices every step of a pack at once.
func (c *Coordinator) QuotePack(ctx context.Context, name string) (*PackQuote, error) {
	pack, err := c.catalog.Pack(name)
	if err != nil {
		return nil, err
	}

	steps := make([]StepQuote, len(pack.Steps))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, step := range pack.Steps {
		group.Go(func() error {
			price, _, err := c.Quote(groupCtx, step.Product, step.Region)
			if err != nil {
				return err
			}
			steps[i] = StepQuote{Product: step.Product, Region: step.Region, Price: price}
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, step := range steps {
		total = total.Add(step.Price)
	}
	return &PackQuote{Name: name, Title: pack.Title, Steps: steps, Total: total}, nil
}

// StartPack buys the first step of a pack; the rest follow each finish.
func (c *Coordinator) StartPack(ctx context.Context, accountID int64, name string) (*models.Order, error) {
	pack, err := c.catalog.Pack(name)
	if err != nil {
		return nil, err
	}

	head := models.Order{PackSteps: pack.Steps}
	step, tail, ok := head.NextStep()
	if !ok {
		return nil, customerror.NewConfigurationError("pack", name)
	}
	return c.Purchase(ctx, accountID, step.Product, step.Region, tail)
}

type CatalogEntry struct {
	Product   string           `json:"product"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Available bool             `json:"available"`
}

// Catalog lists every product with its live price in region.
func (c *Coordinator) Catalog(ctx context.Context, region string) ([]CatalogEntry, error) {
	if _, ok := c.catalog.Regions[region]; !ok {
		return nil, customerror.NewConfigurationError("region", region)
	}

	tags := c.catalog.ProductTags()
	entries := make([]CatalogEntry, len(tags))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	for i, tag := range tags {
		group.Go(func() error {
			entry := CatalogEntry{Product: tag, Name: c.catalog.Products[tag].Name}
			price, _, err := c.Quote(groupCtx, tag, region)
			var supplyErr *customerror.SupplyError
			switch {
			case err == nil:
				entry.Price = &price
				entry.Available = true
			case !errors.As(err, &supplyErr):
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Available && !entries[j].Available
	})
	return entries, nil
}
