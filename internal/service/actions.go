package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"go.uber.org/zap"
)

type ActionResult struct {
	OrderID string   `json:"order_id"`
	State   State    `json:"state"`
	Actions []string `json:"actions"`
	// Next is the order bought right after the action: the next pack step
	// after a finish, the replacement after a report.
	Next *models.Order `json:"next,omitempty"`
}

// Act applies a requester action to a polled order. Transitions of one order
// never run concurrently.
func (c *Coordinator) Act(ctx context.Context, accountID int64, orderID string, action Action) (*ActionResult, error) {
	t, ok := c.registry.get(orderID)
	if !ok {
		return nil, customerror.NewOrderNotActiveError(orderID)
	}
	if t.order.AccountID != accountID {
		return nil, customerror.NewNotOwnerError(orderID, accountID)
	}

	t.mu.Lock()
	if !Allowed(t.state, action) {
		state := t.state
		t.mu.Unlock()
		return nil, customerror.NewIllegalTransitionError(orderID, string(action), string(state))
	}

	var err error
	var followUp func() *models.Order
	order := t.order

	switch action {
	case FinishAction:
		err = c.complete(ctx, t, UserFinishedState, "user")
		followUp = func() *models.Order { return c.advancePack(order) }
	case RetryAction:
		err = c.requestAnotherCode(ctx, t)
	case CancelAction:
		err = c.cancelByUser(ctx, t)
	case ReportAction:
		err = c.report(ctx, t)
		followUp = func() *models.Order { return c.replace(order) }
	}

	result := &ActionResult{OrderID: orderID, State: t.state, Actions: AllowedActions(t.state)}
	t.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if followUp != nil {
		result.Next = followUp()
	}
	return result, nil
}

func (c *Coordinator) requestAnotherCode(ctx context.Context, t *task) error {
	if err := c.supplier.RequestAnotherCode(ctx, t.order.ID); err != nil {
		logger.Log.Warn("another code was not requested", zap.String("order_id", t.order.ID), zap.Error(err))
	}
	return nil
}

func (c *Coordinator) cancelByUser(ctx context.Context, t *task) error {
	result, err := c.supplier.Cancel(ctx, t.order.ID)
	if err != nil {
		return customerror.NewSupplierCancelAmbiguousError(err.Error())
	}

	switch result.Outcome {
	case supplier.CancelConfirmed:
		if err = c.refund(ctx, t, "user_cancel"); err != nil {
			return err
		}
		t.terminate(UserCancelledState)
		c.notify(ctx, t.order.AccountID, frontend.Message{
			Kind:    frontend.OrderRefunded,
			OrderID: t.order.ID,
			Text:    fmt.Sprintf("Order %s cancelled, %s refunded.", t.order.ID, t.order.Price.StringFixed(2)),
		})
		return nil
	case supplier.CancelDeniedTooEarly:
		return customerror.NewCancelTooEarlyError(t.order.ID)
	default:
		return customerror.NewSupplierCancelAmbiguousError(result.Raw)
	}
}

// report refunds a resource the requester could not use and denylists it.
func (c *Coordinator) report(ctx context.Context, t *task) error {
	c.cancelQuietly(ctx, t.order.ID)
	if err := c.refund(ctx, t, "report"); err != nil {
		return err
	}
	if err := c.ledger.BlockResource(ctx, t.order.ResourceID, t.order.Product); err != nil {
		logger.Log.Error("resource was not denylisted",
			zap.String("order_id", t.order.ID),
			zap.String("resource", t.order.ResourceID),
			zap.Error(err),
		)
	}

	t.terminate(ReportedState)
	c.notify(ctx, t.order.AccountID, frontend.Message{
		Kind:    frontend.OrderRefunded,
		OrderID: t.order.ID,
		Text:    fmt.Sprintf("%s reported and refunded, looking for another number.", t.order.ResourceID),
	})
	return nil
}

// advancePack buys the next pack step of a completed order.
func (c *Coordinator) advancePack(order models.Order) *models.Order {
	step, tail, ok := order.NextStep()
	if !ok {
		return nil
	}
	return c.followUp(order, step, tail, frontend.PackStepStarted)
}

// replace buys the same step again with the same tail.
func (c *Coordinator) replace(order models.Order) *models.Order {
	step := models.PackStep{Product: order.Product, Region: order.Region}
	return c.followUp(order, step, order.PackSteps, frontend.OrderReplaced)
}

func (c *Coordinator) followUp(previous models.Order, step models.PackStep, tail []models.PackStep, kind frontend.MessageKind) *models.Order {
	next, err := c.Purchase(c.rootCtx, previous.AccountID, step.Product, step.Region, tail)
	if err == nil {
		return next
	}

	var delivery *customerror.DeliveryError
	if errors.As(err, &delivery) {
		return next
	}

	logger.Log.Warn("follow-up purchase failed",
		zap.String("order_id", previous.ID),
		zap.String("kind", string(kind)),
		zap.String("product", step.Product),
		zap.String("region", step.Region),
		zap.Error(err),
	)
	c.notify(c.rootCtx, previous.AccountID, frontend.Message{
		Kind:    frontend.PackFailed,
		OrderID: previous.ID,
		Text:    fmt.Sprintf("Could not buy %s in %s: %v", step.Product, step.Region, err),
	})
	return nil
}
