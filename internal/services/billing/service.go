package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/apperrors"
	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/orders"
	"restaurant-pos/internal/services/printer"
	"restaurant-pos/internal/services/tables"
)

// Service freezes orders into invoices and manages their lifecycle.
type Service struct {
	db        *database.DB
	repo      *Repository
	orders    *orders.Repository
	tables    *tables.Service
	printQ    *printer.Queue
	publisher *messaging.Publisher
	policy    *auth.Policy
	logger    *logger.Logger
	cfg       config.BillingConfig
}

// NewService creates the billing engine.
func NewService(db *database.DB, orderRepo *orders.Repository, tableSvc *tables.Service, printQ *printer.Queue, publisher *messaging.Publisher, policy *auth.Policy, log *logger.Logger, cfg config.BillingConfig) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(),
		orders:    orderRepo,
		tables:    tableSvc,
		printQ:    printQ,
		publisher: publisher,
		policy:    policy,
		logger:    log,
		cfg:       cfg,
	}
}

// Repo exposes the repository to the payment processor, which settles
// invoices inside its own transactions.
func (s *Service) Repo() *Repository {
	return s.repo
}

// GenerateBill freezes an order into an invoice, queues its print job,
// and moves the table to billing. Generating again while an active
// invoice exists returns that invoice unchanged; new discounts require
// cancelling it first.
func (s *Service) GenerateBill(ctx context.Context, orderID int, actor models.Actor, req *models.GenerateBillRequest, requestID string) (*models.Invoice, error) {
	if err := s.policy.Require(actor, auth.CapBillGenerate); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	var invoice *models.Invoice
	var event *models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.GetOrderForUpdate(ctx, tx, orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order %d does not exist", orderID)
		}
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}

		existing, err := s.repo.ActiveInvoiceByOrder(ctx, tx, orderID)
		if err != nil {
			return apperrors.Internal("failed to check existing invoice", err)
		}
		if existing != nil {
			inv, err := s.loadInvoiceDetail(ctx, tx, existing)
			if err != nil {
				return err
			}
			invoice = inv
			return nil
		}

		switch order.Status {
		case models.OrderCancelled, models.OrderPaid, models.OrderCompleted:
			return apperrors.Conflict("order %s is %s and cannot be billed", order.Number, order.Status)
		}

		items, err := s.orders.GetItems(ctx, tx, orderID)
		if err != nil {
			return apperrors.Internal("failed to load order items", err)
		}
		lines, liveItems, err := s.billLines(ctx, tx, items)
		if err != nil {
			return err
		}
		if len(liveItems) == 0 {
			return apperrors.Conflict("order %s has no billable items", order.Number)
		}

		serviceChargePercent := 0.0
		if req.ApplyServiceCharge {
			serviceChargePercent = s.cfg.ServiceChargePercent
		}
		comp := ComputeBill(lines, req.Discounts, serviceChargePercent, s.cfg.RoundTotals)

		number, err := s.repo.NextInvoiceNumber(ctx, tx, time.Now())
		if err != nil {
			return apperrors.Internal("failed to allocate invoice number", err)
		}

		inv := &models.Invoice{
			Number:         number,
			OrderID:        orderID,
			Status:         models.InvoiceActive,
			Subtotal:       comp.Subtotal,
			DiscountAmount: comp.DiscountAmount,
			TaxableAmount:  comp.TaxableAmount,
			CGSTAmount:     comp.TaxAmounts[models.TaxCGST],
			SGSTAmount:     comp.TaxAmounts[models.TaxSGST],
			IGSTAmount:     comp.TaxAmounts[models.TaxIGST],
			VATAmount:      comp.TaxAmounts[models.TaxVAT],
			CessAmount:     comp.TaxAmounts[models.TaxCESS],
			TotalTax:       comp.TotalTax,
			ServiceCharge:  comp.ServiceCharge,
			RoundOff:       comp.RoundOff,
			GrandTotal:     comp.GrandTotal,
			PaymentStatus:  models.InvoiceUnpaid,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			GeneratedBy:    actor.StaffID,
		}
		if err := s.repo.InsertInvoice(ctx, tx, inv); err != nil {
			if database.IsUniqueViolation(err, "ux_invoices_active_order") {
				return apperrors.Conflict("order %s was billed concurrently; retry to fetch the invoice", order.Number)
			}
			return apperrors.Internal("failed to create invoice", err)
		}

		for _, oi := range liveItems {
			item := models.InvoiceItem{
				InvoiceID:   inv.ID,
				Name:        oi.Name,
				VariantName: oi.VariantName,
				Quantity:    oi.Quantity,
				UnitPrice:   oi.UnitPrice,
				TaxAmount:   oi.TaxAmount,
				TotalPrice:  oi.TotalPrice,
			}
			if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
				return apperrors.Internal("failed to freeze invoice item", err)
			}
			inv.Items = append(inv.Items, item)
		}
		for i := range comp.Discounts {
			d := comp.Discounts[i]
			d.InvoiceID = inv.ID
			if err := s.repo.InsertDiscount(ctx, tx, &d); err != nil {
				return apperrors.Internal("failed to record discount", err)
			}
			inv.Discounts = append(inv.Discounts, d)
		}

		if err := s.orders.UpdateStatus(ctx, tx, orderID, models.OrderBilled); err != nil {
			return apperrors.Internal("failed to mark order billed", err)
		}

		tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}
		if order.Type == models.DineIn && order.TableID != nil {
			if err := s.tables.MarkBilling(ctx, tx, *order.TableID); err != nil {
				return err
			}
		}

		if err := s.enqueueBillJob(ctx, tx, inv, order.Number, tableNumber, 0); err != nil {
			return err
		}

		invoice = inv
		event = &models.Event{
			Type:        models.EventOrderBilled,
			TableNumber: tableNumber,
			OrderNumber: order.Number,
			Amount:      inv.GrandTotal,
			Actor:       actor.StaffID,
			Timestamp:   time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event != nil {
		s.publisher.PublishEvent(ctx, *event)
		s.logger.Info("bill_generated", fmt.Sprintf("Invoice %s generated for order %d", invoice.Number, orderID), requestID, map[string]interface{}{
			"order_id":    orderID,
			"invoice_id":  invoice.ID,
			"grand_total": invoice.GrandTotal,
			"staff_id":    actor.StaffID,
		})
	}
	return invoice, nil
}

// CancelInvoice voids an unpaid invoice and reopens the order for
// changes or re-billing. Invoices with recorded payments cannot be
// cancelled.
func (s *Service) CancelInvoice(ctx context.Context, invoiceID int, actor models.Actor, req *models.CancelRequest, requestID string) error {
	if err := s.policy.Require(actor, auth.CapBillCancel); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return apperrors.Validation("%s", err.Error())
	}

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		inv, err := s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceCancelled {
			return apperrors.Conflict("invoice %s is already cancelled", inv.Number)
		}
		if inv.PaymentStatus != models.InvoiceUnpaid {
			return apperrors.Conflict("invoice %s has recorded payments and cannot be cancelled", inv.Number)
		}

		if err := s.repo.CancelInvoice(ctx, tx, invoiceID, req.Reason); err != nil {
			return apperrors.Internal("failed to cancel invoice", err)
		}

		order, err := s.orders.GetOrderForUpdate(ctx, tx, inv.OrderID)
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}
		if err := s.orders.UpdateStatus(ctx, tx, inv.OrderID, models.OrderServed); err != nil {
			return apperrors.Internal("failed to reopen order", err)
		}
		if order.Type == models.DineIn && order.TableID != nil {
			if err := s.tables.UnmarkBilling(ctx, tx, *order.TableID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("invoice_cancelled", fmt.Sprintf("Invoice %d cancelled: %s", invoiceID, req.Reason), requestID, map[string]interface{}{
		"invoice_id": invoiceID,
		"reason":     req.Reason,
		"staff_id":   actor.StaffID,
	})
	return nil
}

// DuplicateInvoice queues another print of an invoice with a duplicate
// marker. The invoice itself never changes; only the counter moves.
func (s *Service) DuplicateInvoice(ctx context.Context, invoiceID int, actor models.Actor, requestID string) (int, error) {
	if err := s.policy.Require(actor, auth.CapBillGenerate); err != nil {
		return 0, err
	}

	var count int
	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		inv, err := s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceCancelled {
			return apperrors.Conflict("cancelled invoices cannot be reprinted")
		}

		count, err = s.repo.IncrementDuplicate(ctx, tx, invoiceID)
		if err != nil {
			return apperrors.Internal("failed to count duplicate", err)
		}

		detail, err := s.loadInvoiceDetail(ctx, tx, inv)
		if err != nil {
			return err
		}
		order, err := s.orders.GetOrder(ctx, tx, inv.OrderID)
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}
		tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}
		return s.enqueueBillJob(ctx, tx, detail, order.Number, tableNumber, count)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("invoice_duplicated", fmt.Sprintf("Invoice %d duplicate print #%d", invoiceID, count), requestID, map[string]interface{}{
		"invoice_id":      invoiceID,
		"duplicate_count": count,
		"staff_id":        actor.StaffID,
	})
	return count, nil
}

// PrintInvoice re-queues the invoice's print job without touching the
// duplicate counter (jammed printer, torn slip). Legal duplicates for
// the guest go through DuplicateInvoice instead.
func (s *Service) PrintInvoice(ctx context.Context, invoiceID int, actor models.Actor, requestID string) error {
	if err := s.policy.Require(actor, auth.CapBillGenerate); err != nil {
		return err
	}

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		inv, err := s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceCancelled {
			return apperrors.Conflict("cancelled invoices cannot be reprinted")
		}

		detail, err := s.loadInvoiceDetail(ctx, tx, inv)
		if err != nil {
			return err
		}
		order, err := s.orders.GetOrder(ctx, tx, inv.OrderID)
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}
		tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}
		return s.enqueueBillJob(ctx, tx, detail, order.Number, tableNumber, 0)
	})
	if err != nil {
		return err
	}

	s.logger.Info("invoice_print_queued", fmt.Sprintf("Invoice %d print re-queued", invoiceID), requestID, map[string]interface{}{
		"invoice_id": invoiceID,
		"staff_id":   actor.StaffID,
	})
	return nil
}

// GetInvoice loads one invoice with its lines and discounts.
func (s *Service) GetInvoice(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, s.db.Pool, invoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("invoice %d does not exist", invoiceID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice", err)
	}
	return s.loadInvoiceDetail(ctx, s.db.Pool, inv)
}

func (s *Service) lockInvoice(ctx context.Context, tx pgx.Tx, invoiceID int) (*models.Invoice, error) {
	inv, err := s.repo.GetInvoiceForUpdate(ctx, tx, invoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("invoice %d does not exist", invoiceID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice", err)
	}
	return inv, nil
}

func (s *Service) loadInvoiceDetail(ctx context.Context, q database.Querier, inv *models.Invoice) (*models.Invoice, error) {
	items, err := s.repo.GetItems(ctx, q, inv.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice items", err)
	}
	discounts, err := s.repo.GetDiscounts(ctx, q, inv.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice discounts", err)
	}
	inv.Items = items
	inv.Discounts = discounts
	return inv, nil
}

// billLines pairs each live order item with its tax component rates.
func (s *Service) billLines(ctx context.Context, tx pgx.Tx, items []models.OrderItem) ([]BillLine, []models.OrderItem, error) {
	componentCache := make(map[int][]TaxLine)
	var lines []BillLine
	var live []models.OrderItem

	for _, item := range items {
		if item.Status == models.ItemCancelled {
			continue
		}
		components, ok := componentCache[item.MenuItemID]
		if !ok {
			var err error
			components, err = s.repo.ItemTaxComponents(ctx, tx, item.MenuItemID)
			if err != nil {
				return nil, nil, apperrors.Internal("failed to resolve tax components", err)
			}
			componentCache[item.MenuItemID] = components
		}
		lines = append(lines, BillLine{Item: item, Components: components})
		live = append(live, item)
	}
	return lines, live, nil
}

func (s *Service) enqueueBillJob(ctx context.Context, tx pgx.Tx, inv *models.Invoice, orderNumber, tableNumber string, duplicate int) error {
	job := &printer.Job{
		Type:        printer.JobBill,
		Station:     "cashier",
		Content:     printer.RenderInvoice(inv, orderNumber, tableNumber, duplicate),
		ReferenceNo: inv.Number,
	}
	if err := s.printQ.Enqueue(ctx, tx, job); err != nil {
		return apperrors.Internal("failed to enqueue bill print", err)
	}
	return nil
}
