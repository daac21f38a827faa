package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/apperrors"
	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/billing"
	"restaurant-pos/internal/services/orders"
	"restaurant-pos/internal/services/tables"
)

// Service records settlement transactions against invoices and closes
// out orders and tables when the bill is fully paid.
type Service struct {
	db        *database.DB
	repo      *Repository
	invoices  *billing.Repository
	orders    *orders.Repository
	tables    *tables.Service
	publisher *messaging.Publisher
	policy    *auth.Policy
	logger    *logger.Logger
}

// NewService creates the payment processor.
func NewService(db *database.DB, invoiceRepo *billing.Repository, orderRepo *orders.Repository, tableSvc *tables.Service, publisher *messaging.Publisher, policy *auth.Policy, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(),
		invoices:  invoiceRepo,
		orders:    orderRepo,
		tables:    tableSvc,
		publisher: publisher,
		policy:    policy,
		logger:    log,
	}
}

// Pay records one single-mode payment against an invoice. Partial
// amounts are allowed; the invoice settles once cumulative completed
// payments reach the grand total, which also completes the order and
// frees a dine-in table.
func (s *Service) Pay(ctx context.Context, actor models.Actor, req *models.PaymentRequest, requestID string) (*models.Payment, error) {
	if err := s.policy.Require(actor, auth.CapPaymentRecord); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	payment := &models.Payment{
		InvoiceID:        req.InvoiceID,
		OrderID:          req.OrderID,
		Mode:             models.PaymentMode(req.Mode),
		Amount:           round2(req.Amount),
		TipAmount:        round2(req.TipAmount),
		CardLastFour:     req.CardLastFour,
		UPITransactionID: req.UPITransactionID,
		ReceivedBy:       actor.StaffID,
	}
	return s.record(ctx, actor, payment, nil, requestID)
}

// PaySplit records one payment settled across several modes at once.
// The parent amount is the sum of its splits, so the conservation
// invariant holds by construction; each row is validated and stored
// with its position.
func (s *Service) PaySplit(ctx context.Context, actor models.Actor, req *models.SplitPaymentRequest, requestID string) (*models.Payment, error) {
	if err := s.policy.Require(actor, auth.CapPaymentRecord); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	amount := SplitsTotal(req.Splits)
	if !SplitsConserve(req.Splits, amount) {
		return nil, apperrors.Validation("split amounts do not sum consistently")
	}

	payment := &models.Payment{
		InvoiceID:  req.InvoiceID,
		OrderID:    req.OrderID,
		Mode:       models.ModeSplit,
		Amount:     amount,
		TipAmount:  round2(req.TipAmount),
		ReceivedBy: actor.StaffID,
	}
	return s.record(ctx, actor, payment, req.Splits, requestID)
}

// record is the shared settlement path for single and split payments.
func (s *Service) record(ctx context.Context, actor models.Actor, payment *models.Payment, splits []models.SplitEntry, requestID string) (*models.Payment, error) {
	var events []models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		invoice, err := s.invoices.GetInvoiceForUpdate(ctx, tx, payment.InvoiceID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("invoice %d does not exist", payment.InvoiceID)
		}
		if err != nil {
			return apperrors.Internal("failed to load invoice", err)
		}
		if invoice.OrderID != payment.OrderID {
			return apperrors.Validation("invoice %s does not belong to order %d", invoice.Number, payment.OrderID)
		}
		if invoice.Status == models.InvoiceCancelled {
			return apperrors.Conflict("invoice %s is cancelled", invoice.Number)
		}
		if invoice.PaymentStatus == models.InvoicePaid {
			return apperrors.Conflict("invoice %s is already settled", invoice.Number)
		}

		order, err := s.orders.GetOrderForUpdate(ctx, tx, payment.OrderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order %d does not exist", payment.OrderID)
		}
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}

		paid, err := s.invoices.SumCompletedPayments(ctx, tx, invoice.ID)
		if err != nil {
			return apperrors.Internal("failed to sum payments", err)
		}
		outstanding := round2(invoice.GrandTotal - paid)
		if payment.Amount > outstanding {
			return apperrors.Validation("amount %.2f exceeds outstanding balance %.2f", payment.Amount, outstanding)
		}

		number, err := s.repo.NextPaymentNumber(ctx, tx, time.Now())
		if err != nil {
			return apperrors.Internal("failed to allocate payment number", err)
		}
		payment.Number = number
		payment.TotalAmount = round2(payment.Amount + payment.TipAmount)
		payment.Status = models.PaymentDone

		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return apperrors.Internal("failed to record payment", err)
		}
		for i, entry := range splits {
			sp := models.SplitPayment{
				PaymentID:        payment.ID,
				Position:         i + 1,
				Mode:             models.PaymentMode(entry.Mode),
				Amount:           round2(entry.Amount),
				CardLastFour:     entry.CardLastFour,
				UPITransactionID: entry.UPITransactionID,
			}
			if err := s.repo.InsertSplit(ctx, tx, &sp); err != nil {
				return apperrors.Internal("failed to record split row", err)
			}
			payment.Splits = append(payment.Splits, sp)
		}

		tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}

		settled := round2(paid+payment.Amount) >= invoice.GrandTotal
		if settled {
			if err := s.invoices.UpdatePaymentStatus(ctx, tx, invoice.ID, models.InvoicePaid); err != nil {
				return apperrors.Internal("failed to settle invoice", err)
			}
			if err := s.orders.UpdatePaymentStatus(ctx, tx, order.ID, models.OrderCompleted, models.PaymentCompleted); err != nil {
				return apperrors.Internal("failed to complete order", err)
			}
			if order.Type == models.DineIn && order.TableID != nil {
				session, err := s.tables.ActiveSession(ctx, tx, *order.TableID)
				if err != nil {
					return err
				}
				if session != nil {
					table, err := s.tables.ReleaseTableTx(ctx, tx, *order.TableID)
					if err != nil {
						return err
					}
					events = append(events, models.Event{
						Type:        models.EventTableUpdated,
						TableNumber: table.Number,
						TableStatus: string(table.Status),
						Timestamp:   time.Now().UTC(),
					})
				}
			}
		} else {
			if err := s.invoices.UpdatePaymentStatus(ctx, tx, invoice.ID, models.InvoicePartiallyPaid); err != nil {
				return apperrors.Internal("failed to mark invoice partial", err)
			}
			if err := s.orders.UpdatePaymentStatus(ctx, tx, order.ID, order.Status, models.PaymentPartial); err != nil {
				return apperrors.Internal("failed to mark order partial", err)
			}
		}

		events = append([]models.Event{{
			Type:        models.EventPaymentReceived,
			TableNumber: tableNumber,
			OrderNumber: order.Number,
			Amount:      payment.Amount,
			Actor:       actor.StaffID,
			Timestamp:   time.Now().UTC(),
		}}, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		s.publisher.PublishEvent(ctx, ev)
	}
	s.logger.Info("payment_recorded", fmt.Sprintf("Payment %s of %.2f recorded", payment.Number, payment.Amount), requestID, map[string]interface{}{
		"payment_id": payment.ID,
		"invoice_id": payment.InvoiceID,
		"order_id":   payment.OrderID,
		"mode":       payment.Mode,
		"amount":     payment.Amount,
		"staff_id":   actor.StaffID,
	})
	return payment, nil
}
