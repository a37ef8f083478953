package service

import (
	"context"
	"fmt"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/poll"
	"go.uber.org/zap"
)

func (c *Coordinator) watch(ctx context.Context, t *task) {
	pollConfig := poll.Config{Interval: c.config.PollInterval, IdleLimit: c.config.IdleLimit}

	outcome, err := poll.Until(ctx, pollConfig, func(ctx context.Context) poll.Step {
		return c.pollOnce(ctx, t)
	})
	if err != nil {
		if t.current().IsTerminal() {
			return
		}
		logger.Log.Info("polling stopped, order stays pending", zap.String("order_id", t.order.ID), zap.Error(err))
		return
	}
	if outcome == poll.Exhausted {
		c.expire(context.WithoutCancel(ctx), t)
	}
}

func (c *Coordinator) pollOnce(ctx context.Context, t *task) poll.Step {
	if t.current().IsTerminal() {
		return poll.Done
	}

	status, err := c.supplier.PollStatus(ctx, t.order.ID)
	if err != nil {
		logger.Log.Debug("poll failed, still waiting", zap.String("order_id", t.order.ID), zap.Error(err))
		return poll.Idle
	}

	// Transitions must outlive the task context they cancel.
	transitionCtx := context.WithoutCancel(ctx)
	switch status.Kind {
	case supplier.CodeReceived:
		return c.deliverCode(transitionCtx, t, status.Code)
	case supplier.SupplierCancelled:
		return c.supplierCancelled(transitionCtx, t)
	default:
		return poll.Idle
	}
}

// deliverCode sends a code the requester has not seen yet. Only a new code
// counts as progress.
func (c *Coordinator) deliverCode(ctx context.Context, t *task, code string) poll.Step {
	t.mu.Lock()
	if t.state.IsTerminal() {
		t.mu.Unlock()
		return poll.Done
	}
	if _, seen := t.seenCodes[code]; seen {
		t.mu.Unlock()
		return poll.Idle
	}
	t.seenCodes[code] = struct{}{}
	t.state = CodeDeliveredState

	accountID := t.order.AccountID
	message := frontend.Message{
		Kind:    frontend.CodeDelivered,
		OrderID: t.order.ID,
		Text:    fmt.Sprintf("Code for %s: %s", t.order.ResourceID, code),
		Code:    code,
		Actions: AllowedActions(t.state),
	}
	t.mu.Unlock()

	logger.Log.Info("code received", zap.String("order_id", message.OrderID))
	c.notify(ctx, accountID, message)
	return poll.Progress
}

func (c *Coordinator) supplierCancelled(ctx context.Context, t *task) poll.Step {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.IsTerminal() {
		return poll.Done
	}
	if err := c.refund(ctx, t, "supplier_cancelled"); err != nil {
		return poll.Idle
	}
	t.terminate(SupplierCancelledState)
	c.notify(ctx, t.order.AccountID, frontend.Message{
		Kind:    frontend.OrderRefunded,
		OrderID: t.order.ID,
		Text:    fmt.Sprintf("The supplier cancelled %s, %s refunded.", t.order.ResourceID, t.order.Price.StringFixed(2)),
	})
	return poll.Done
}

// expire ends an order that stayed idle for the whole polling window.
func (c *Coordinator) expire(ctx context.Context, t *task) {
	t.mu.Lock()

	if t.state.IsTerminal() {
		t.mu.Unlock()
		return
	}

	if t.state == WaitingState {
		c.cancelQuietly(ctx, t.order.ID)
		err := c.refund(ctx, t, "timeout")
		if err == nil {
			t.terminate(TimedOutNoCodeState)
			c.notify(ctx, t.order.AccountID, frontend.Message{
				Kind:    frontend.OrderRefunded,
				OrderID: t.order.ID,
				Text:    fmt.Sprintf("No code arrived in time for %s, %s refunded.", t.order.ResourceID, t.order.Price.StringFixed(2)),
			})
		}
		t.mu.Unlock()
		return
	}

	err := c.complete(ctx, t, TimedOutWithCodeState, "timeout")
	order := t.order
	t.mu.Unlock()

	if err == nil {
		c.advancePack(order)
	}
}

// refund gives the price back once. Callers hold t.mu.
func (c *Coordinator) refund(ctx context.Context, t *task, reason string) error {
	refunded, err := c.ledger.Refund(ctx, t.order.ID)
	if err != nil {
		logger.Log.Error("refund failed", zap.String("order_id", t.order.ID), zap.String("reason", reason), zap.Error(err))
		return err
	}
	if !refunded {
		logger.Log.Warn("order was already closed, nothing refunded", zap.String("order_id", t.order.ID), zap.String("reason", reason))
		return nil
	}

	c.metrics.Refunds.WithLabelValues(reason).Inc()
	logger.Log.Info("order refunded",
		zap.String("order_id", t.order.ID),
		zap.Int64("account_id", t.order.AccountID),
		zap.String("reason", reason),
	)
	return nil
}

// complete finalizes the activation and marks the order COMPLETED. An order
// closed elsewhere ends the task with OrderNotActiveError. Callers hold t.mu.
func (c *Coordinator) complete(ctx context.Context, t *task, state State, trigger string) error {
	if err := c.supplier.Finalize(ctx, t.order.ID); err != nil {
		logger.Log.Warn("finalize failed", zap.String("order_id", t.order.ID), zap.Error(err))
	}

	updated, err := c.ledger.SetStatus(ctx, t.order.ID, models.CompletedStatus)
	if err != nil {
		logger.Log.Error("order was not completed", zap.String("order_id", t.order.ID), zap.Error(err))
		return err
	}
	if !updated {
		logger.Log.Warn("order was already closed", zap.String("order_id", t.order.ID))
		t.terminate(state)
		return customerror.NewOrderNotActiveError(t.order.ID)
	}
	c.metrics.Completions.WithLabelValues(trigger).Inc()

	t.terminate(state)
	c.notify(ctx, t.order.AccountID, frontend.Message{
		Kind:    frontend.OrderFinished,
		OrderID: t.order.ID,
		Text:    fmt.Sprintf("Order %s is complete.", t.order.ID),
	})
	return nil
}
