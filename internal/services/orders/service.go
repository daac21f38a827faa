package orders

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
	"restaurant-pos/internal/services/printer"
	"restaurant-pos/internal/services/tables"
)

// Service owns the order lifecycle: creation, item mutation, totals,
// and cancellation with its ticket propagation.
type Service struct {
	db        *database.DB
	repo      *Repository
	tables    *tables.Service
	printQ    *printer.Queue
	publisher *messaging.Publisher
	policy    *auth.Policy
	logger    *logger.Logger
}

// NewService creates the order manager.
func NewService(db *database.DB, tableSvc *tables.Service, printQ *printer.Queue, publisher *messaging.Publisher, policy *auth.Policy, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(),
		tables:    tableSvc,
		printQ:    printQ,
		publisher: publisher,
		policy:    policy,
		logger:    log,
	}
}

// Repo exposes the repository to the ticket router, which reads and
// stamps order items inside its own transactions.
func (s *Service) Repo() *Repository {
	return s.repo
}

// CreateOrder opens a new order. Dine-in orders require an active
// session on the table, owned by the caller (or an elevated override).
// Initial items are optional; pending items dispatch later via the
// ticket router.
func (s *Service) CreateOrder(ctx context.Context, actor models.Actor, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	if err := s.policy.Require(actor, auth.CapOrderCreate); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	var order *models.Order
	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		var sessionID *int
		if models.OrderType(req.OrderType) == models.DineIn {
			session, err := s.tables.ActiveSession(ctx, tx, *req.TableID)
			if err != nil {
				return err
			}
			if session == nil {
				return apperrors.Conflict("table %d has no active session; seat guests first", *req.TableID)
			}
			if err := s.policy.RequireOwnership(actor, session.StaffID); err != nil {
				return err
			}
			sessionID = &session.ID
		}

		number, err := s.repo.NextOrderNumber(ctx, tx, time.Now())
		if err != nil {
			return apperrors.Internal("failed to allocate order number", err)
		}

		order = &models.Order{
			Number:        number,
			Type:          models.OrderType(req.OrderType),
			TableID:       req.TableID,
			SessionID:     sessionID,
			GuestCount:    req.GuestCount,
			GuestName:     req.GuestName,
			GuestPhone:    req.GuestPhone,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			CreatedBy:     actor.StaffID,
		}
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return apperrors.Internal("failed to create order", err)
		}

		if sessionID != nil {
			if err := s.tables.SetSessionOrder(ctx, tx, *sessionID, order.ID); err != nil {
				return err
			}
		}

		if len(req.Items) > 0 {
			if err := s.addItemsTx(ctx, tx, order, req.Items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %s created", order.Number), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.Number,
		"order_type":   order.Type,
		"items":        len(order.Items),
		"staff_id":     actor.StaffID,
	})
	return order, nil
}

// AddItems appends lines to an open order and recomputes its totals.
// New lines start pending and join the next ticket dispatch.
func (s *Service) AddItems(ctx context.Context, orderID int, actor models.Actor, req *models.AddItemsRequest, requestID string) (*models.Order, error) {
	if err := s.policy.Require(actor, auth.CapOrderAddItems); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	var order *models.Order
	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		o, err := s.lockOpenOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := s.requireOrderOwnership(ctx, tx, actor, o); err != nil {
			return err
		}
		if err := s.addItemsTx(ctx, tx, o, req.Items); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("items_added", fmt.Sprintf("%d items added to order %s", len(req.Items), order.Number), requestID, map[string]interface{}{
		"order_id":     orderID,
		"order_number": order.Number,
		"items":        len(req.Items),
		"staff_id":     actor.StaffID,
	})
	return order, nil
}

// CancelItem cancels one order line. Pending lines drop immediately;
// dispatched lines propagate to their ticket copy, emit a cancel slip
// to the station, and auto-cancel the ticket when it has no live items
// left. Reasons configured to require approval need an actor holding
// the approval capability.
func (s *Service) CancelItem(ctx context.Context, itemID int, actor models.Actor, req *models.CancelRequest, requestID string) (*models.Order, error) {
	if err := s.policy.Require(actor, auth.CapOrderCancel); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	var order *models.Order
	var events []models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		// Order row first, then the item row: item addition and ticket
		// dispatch take their locks in that order.
		orderID, err := s.repo.ItemOrderID(ctx, tx, itemID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order item %d does not exist", itemID)
		}
		if err != nil {
			return apperrors.Internal("failed to load order item", err)
		}

		o, err := s.lockOpenOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		item, err := s.repo.GetItemForUpdate(ctx, tx, itemID)
		if err != nil {
			return apperrors.Internal("failed to load order item", err)
		}
		if item.Status == models.ItemCancelled {
			return apperrors.Conflict("item is already cancelled")
		}
		if item.Status == models.ItemServed {
			return apperrors.Conflict("served items cannot be cancelled")
		}
		if err := s.requireOrderOwnership(ctx, tx, actor, o); err != nil {
			return err
		}
		if err := s.checkCancellationReason(ctx, tx, actor, req.Reason); err != nil {
			return err
		}

		if err := s.repo.CancelItem(ctx, tx, itemID, req.Reason, actor.StaffID); err != nil {
			return apperrors.Internal("failed to cancel item", err)
		}

		tableNumber, err := s.repo.TableNumber(ctx, tx, o.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}

		// Dispatched lines have a live ticket copy that must stop.
		if item.Status != models.ItemPending {
			evs, err := s.propagateItemCancel(ctx, tx, o, item, tableNumber, req.Reason, actor)
			if err != nil {
				return err
			}
			events = evs
		}

		if err := s.recomputeTx(ctx, tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		s.publisher.PublishEvent(ctx, ev)
	}
	s.logger.Info("item_cancelled", fmt.Sprintf("Item %d cancelled on order %s", itemID, order.Number), requestID, map[string]interface{}{
		"order_id": order.ID,
		"item_id":  itemID,
		"reason":   req.Reason,
		"staff_id": actor.StaffID,
	})
	return order, nil
}

// CancelOrder voids a whole order: every live item, every non-terminal
// ticket (with a cancel slip per station), and for dine-in the table is
// released. Orders with recorded payments cannot be cancelled.
func (s *Service) CancelOrder(ctx context.Context, orderID int, actor models.Actor, req *models.CancelRequest, requestID string) error {
	if err := s.policy.Require(actor, auth.CapOrderCancel); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return apperrors.Validation("%s", err.Error())
	}

	var order *models.Order
	var events []models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		o, err := s.lockOpenOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := s.requireOrderOwnership(ctx, tx, actor, o); err != nil {
			return err
		}

		payments, err := s.repo.CountPayments(ctx, tx, orderID)
		if err != nil {
			return apperrors.Internal("failed to count payments", err)
		}
		if payments > 0 {
			return apperrors.Conflict("order %s has recorded payments and cannot be cancelled", o.Number)
		}

		if err := s.checkCancellationReason(ctx, tx, actor, req.Reason); err != nil {
			return err
		}

		tableNumber, err := s.repo.TableNumber(ctx, tx, o.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}

		tickets, err := s.repo.NonTerminalTickets(ctx, tx, orderID)
		if err != nil {
			return apperrors.Internal("failed to load tickets", err)
		}
		for _, t := range tickets {
			items, err := s.liveTicketEventItems(ctx, tx, t.ID)
			if err != nil {
				return err
			}
			if err := s.repo.CancelTicketItems(ctx, tx, t.ID); err != nil {
				return apperrors.Internal("failed to cancel ticket items", err)
			}
			if err := s.repo.CancelTicket(ctx, tx, t.ID, req.Reason, actor.StaffID); err != nil {
				return apperrors.Internal("failed to cancel ticket", err)
			}
			if err := s.enqueueCancelSlip(ctx, tx, t.Station, t.Number, items, req.Reason); err != nil {
				return err
			}
			events = append(events, models.Event{
				Type:         models.EventKotCancelled,
				Station:      t.Station,
				TableNumber:  tableNumber,
				OrderNumber:  o.Number,
				TicketNumber: t.Number,
				Items:        items,
				Actor:        actor.StaffID,
				Timestamp:    time.Now().UTC(),
			})
		}

		if err := s.repo.CancelPendingItems(ctx, tx, orderID, req.Reason, actor.StaffID); err != nil {
			return apperrors.Internal("failed to cancel order items", err)
		}
		if err := s.repo.CancelOrder(ctx, tx, orderID, req.Reason); err != nil {
			return apperrors.Internal("failed to cancel order", err)
		}

		if o.Type == models.DineIn && o.TableID != nil {
			session, err := s.tables.ActiveSession(ctx, tx, *o.TableID)
			if err != nil {
				return err
			}
			if session != nil {
				table, err := s.tables.ReleaseTableTx(ctx, tx, *o.TableID)
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
		order = o
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		s.publisher.PublishEvent(ctx, ev)
	}
	s.logger.Info("order_cancelled", fmt.Sprintf("Order %s cancelled", order.Number), requestID, map[string]interface{}{
		"order_id": orderID,
		"reason":   req.Reason,
		"staff_id": actor.StaffID,
	})
	return nil
}

// GetOrder loads one order with its items.
func (s *Service) GetOrder(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, s.db.Pool, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order %d does not exist", orderID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}
	items, err := s.repo.GetItems(ctx, s.db.Pool, orderID)
	if err != nil {
		return nil, apperrors.Internal("failed to load order items", err)
	}
	order.Items = items
	return order, nil
}

// lockOpenOrder loads an order under a row lock and rejects mutation of
// terminal or billed orders.
func (s *Service) lockOpenOrder(ctx context.Context, tx pgx.Tx, orderID int) (*models.Order, error) {
	o, err := s.repo.GetOrderForUpdate(ctx, tx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order %d does not exist", orderID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}
	switch o.Status {
	case models.OrderCancelled, models.OrderPaid, models.OrderCompleted:
		return nil, apperrors.Conflict("order %s is %s and can no longer change", o.Number, o.Status)
	case models.OrderBilled:
		return nil, apperrors.Conflict("order %s is billed; cancel the invoice before changing it", o.Number)
	}
	return o, nil
}

// requireOrderOwnership enforces the owning-captain rule on dine-in
// orders via the table's session.
func (s *Service) requireOrderOwnership(ctx context.Context, tx pgx.Tx, actor models.Actor, o *models.Order) error {
	if o.Type != models.DineIn || o.TableID == nil {
		return nil
	}
	session, err := s.tables.ActiveSession(ctx, tx, *o.TableID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return s.policy.RequireOwnership(actor, session.StaffID)
}

// checkCancellationReason validates the reason against the configured
// catalog and enforces its approval policy.
func (s *Service) checkCancellationReason(ctx context.Context, tx pgx.Tx, actor models.Actor, reason string) error {
	cr, err := s.repo.GetCancellationReason(ctx, tx, reason)
	if err != nil {
		return apperrors.Internal("failed to load cancellation reason", err)
	}
	if cr == nil {
		return apperrors.Validation("unknown cancellation reason: %s", reason)
	}
	if cr.RequiresApproval && !s.policy.Allows(actor.Role, auth.CapCancelApprove) {
		return apperrors.ApprovalRequired("reason %q requires manager approval", reason)
	}
	return nil
}

// addItemsTx resolves catalog snapshots, inserts the lines, and
// recomputes the order totals. Runs in the caller's transaction.
func (s *Service) addItemsTx(ctx context.Context, tx pgx.Tx, order *models.Order, reqs []models.OrderItemRequest) error {
	for i, ir := range reqs {
		item, err := s.resolveItem(ctx, tx, order.ID, ir)
		if err != nil {
			return err
		}
		if err := s.repo.InsertItem(ctx, tx, item); err != nil {
			return apperrors.Internal(fmt.Sprintf("failed to insert item %d", i), err)
		}
	}
	return s.recomputeTx(ctx, tx, order)
}

// resolveItem snapshots one requested line against the current catalog:
// name, variant, station, unit price, and the tax of the line.
func (s *Service) resolveItem(ctx context.Context, tx pgx.Tx, orderID int, ir models.OrderItemRequest) (*models.OrderItem, error) {
	menu, err := s.repo.GetMenuItem(ctx, tx, ir.MenuItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Validation("menu item %d does not exist or is inactive", ir.MenuItemID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to resolve menu item", err)
	}

	unitPrice := menu.Price
	var variantName *string
	if ir.VariantID != nil {
		v, err := s.repo.GetVariant(ctx, tx, *ir.VariantID, ir.MenuItemID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Validation("variant %d does not belong to menu item %d", *ir.VariantID, ir.MenuItemID)
		}
		if err != nil {
			return nil, apperrors.Internal("failed to resolve variant", err)
		}
		unitPrice = v.Price
		variantName = &v.Name
	}

	rate, err := s.repo.TaxRate(ctx, tx, menu.TaxGroupID)
	if err != nil {
		return nil, apperrors.Internal("failed to resolve tax group", err)
	}

	lineAmount := LineAmount(unitPrice, ir.Quantity, ir.Addons)
	addons := ir.Addons
	if addons == nil {
		addons = []models.Addon{}
	}
	return &models.OrderItem{
		OrderID:      orderID,
		MenuItemID:   menu.ID,
		Name:         menu.Name,
		VariantName:  variantName,
		Station:      menu.Station,
		StationClass: menu.StationClass,
		Quantity:     ir.Quantity,
		UnitPrice:    unitPrice,
		TaxAmount:    LineTax(lineAmount, rate),
		TotalPrice:   lineAmount,
		Addons:       addons,
		Instructions: ir.Instructions,
		Status:       models.ItemPending,
	}, nil
}

// recomputeTx reloads the order's items and writes fresh aggregates.
func (s *Service) recomputeTx(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	items, err := s.repo.GetItems(ctx, tx, order.ID)
	if err != nil {
		return apperrors.Internal("failed to reload items", err)
	}
	subtotal, tax, total := RecomputeTotals(items)
	if err := s.repo.UpdateTotals(ctx, tx, order.ID, subtotal, tax, total); err != nil {
		return apperrors.Internal("failed to update totals", err)
	}
	order.Items = items
	order.Subtotal = subtotal
	order.TaxAmount = tax
	order.TotalAmount = total
	return nil
}

// propagateItemCancel cancels the ticket copy of a dispatched item,
// prints a cancel slip to the station, and cancels the whole ticket
// when no live items remain on it.
func (s *Service) propagateItemCancel(ctx context.Context, tx pgx.Tx, o *models.Order, item *models.OrderItem, tableNumber, reason string, actor models.Actor) ([]models.Event, error) {
	ticketIDs, err := s.repo.CancelTicketItemByOrderItem(ctx, tx, item.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to cancel ticket item", err)
	}

	cancelled := []models.EventItem{{
		Name:        item.Name,
		VariantName: item.VariantName,
		Quantity:    item.Quantity,
		Status:      string(models.ItemCancelled),
	}}

	var events []models.Event
	for _, ticketID := range ticketIDs {
		header, err := s.repo.GetTicketHeader(ctx, tx, ticketID)
		if err != nil {
			return nil, apperrors.Internal("failed to load ticket", err)
		}
		if err := s.enqueueCancelSlip(ctx, tx, header.Station, header.Number, cancelled, reason); err != nil {
			return nil, err
		}
		events = append(events, models.Event{
			Type:         models.EventKotItemCancelled,
			Station:      header.Station,
			TableNumber:  tableNumber,
			OrderNumber:  o.Number,
			TicketNumber: header.Number,
			Items:        cancelled,
			Actor:        actor.StaffID,
			Timestamp:    time.Now().UTC(),
		})

		live, err := s.repo.LiveTicketItemCount(ctx, tx, ticketID)
		if err != nil {
			return nil, apperrors.Internal("failed to count ticket items", err)
		}
		if live == 0 && header.Status != models.TicketCancelled {
			if err := s.repo.CancelTicket(ctx, tx, ticketID, "all items cancelled", actor.StaffID); err != nil {
				return nil, apperrors.Internal("failed to cancel ticket", err)
			}
			events = append(events, models.Event{
				Type:         models.EventKotCancelled,
				Station:      header.Station,
				TableNumber:  tableNumber,
				OrderNumber:  o.Number,
				TicketNumber: header.Number,
				Actor:        actor.StaffID,
				Timestamp:    time.Now().UTC(),
			})
		}
	}
	return events, nil
}

// liveTicketEventItems snapshots a ticket's live items for cancel slips
// and events before they are wiped.
func (s *Service) liveTicketEventItems(ctx context.Context, tx pgx.Tx, ticketID int) ([]models.EventItem, error) {
	rows, err := tx.Query(ctx, database.GetTicketItemsSQL, ticketID)
	if err != nil {
		return nil, apperrors.Internal("failed to load ticket items", err)
	}
	defer rows.Close()

	var items []models.EventItem
	for rows.Next() {
		var ki models.KotItem
		err := rows.Scan(&ki.ID, &ki.TicketID, &ki.OrderItemID, &ki.Name, &ki.VariantName,
			&ki.Quantity, &ki.Addons, &ki.Instructions, &ki.Status, &ki.ReadyAt, &ki.CancelledAt)
		if err != nil {
			return nil, apperrors.Internal("failed to scan ticket item", err)
		}
		if ki.Status == models.ItemCancelled {
			continue
		}
		items = append(items, models.EventItem{
			Name:        ki.Name,
			VariantName: ki.VariantName,
			Quantity:    ki.Quantity,
			Status:      string(ki.Status),
		})
	}
	return items, rows.Err()
}

// enqueueCancelSlip prints a halt-preparation slip to one station.
func (s *Service) enqueueCancelSlip(ctx context.Context, tx pgx.Tx, station, ticketNumber string, items []models.EventItem, reason string) error {
	job := &printer.Job{
		Type:        printer.JobCancelSlip,
		Station:     station,
		Content:     printer.RenderCancelSlip(station, ticketNumber, items, reason),
		ReferenceNo: ticketNumber,
	}
	if err := s.printQ.Enqueue(ctx, tx, job); err != nil {
		return apperrors.Internal("failed to enqueue cancel slip", err)
	}
	return nil
}
