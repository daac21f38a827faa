package tickets

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
	"restaurant-pos/internal/services/orders"
	"restaurant-pos/internal/services/printer"
)

// Service routes pending order items to preparation stations and drives
// each ticket through its state machine.
type Service struct {
	db        *database.DB
	repo      *Repository
	orders    *orders.Repository
	printQ    *printer.Queue
	publisher *messaging.Publisher
	policy    *auth.Policy
	logger    *logger.Logger
}

// NewService creates the ticket router.
func NewService(db *database.DB, orderRepo *orders.Repository, printQ *printer.Queue, publisher *messaging.Publisher, policy *auth.Policy, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(),
		orders:    orderRepo,
		printQ:    printQ,
		publisher: publisher,
		policy:    policy,
		logger:    log,
	}
}

// SendTickets dispatches every pending item of an order, grouped by
// station, as one ticket per station. Each ticket gets a print job and
// a created event. A second call with nothing pending is a no-op that
// returns an empty slice.
func (s *Service) SendTickets(ctx context.Context, orderID int, actor models.Actor, requestID string) ([]models.KotTicket, error) {
	if err := s.policy.Require(actor, auth.CapTicketSend); err != nil {
		return nil, err
	}

	var tickets []models.KotTicket
	var events []models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orders.GetOrderForUpdate(ctx, tx, orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order %d does not exist", orderID)
		}
		if err != nil {
			return apperrors.Internal("failed to load order", err)
		}
		switch order.Status {
		case models.OrderCancelled, models.OrderBilled, models.OrderPaid, models.OrderCompleted:
			return apperrors.Conflict("order %s is %s; items can no longer be dispatched", order.Number, order.Status)
		}

		pending, err := s.orders.PendingItemsForUpdate(ctx, tx, orderID)
		if err != nil {
			return apperrors.Internal("failed to load pending items", err)
		}
		if len(pending) == 0 {
			return nil
		}

		tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
		if err != nil {
			return apperrors.Internal("failed to resolve table", err)
		}

		now := time.Now()
		for _, group := range GroupByStation(pending) {
			number, err := s.repo.NextTicketNumber(ctx, tx, group.Class, now)
			if err != nil {
				return apperrors.Internal("failed to allocate ticket number", err)
			}
			ticket := models.KotTicket{
				Number:       number,
				OrderID:      orderID,
				Station:      group.Station,
				StationClass: group.Class,
				Status:       models.TicketPending,
			}
			if err := s.repo.InsertTicket(ctx, tx, &ticket); err != nil {
				return apperrors.Internal("failed to create ticket", err)
			}

			itemIDs := make([]int, 0, len(group.Items))
			eventItems := make([]models.EventItem, 0, len(group.Items))
			for _, oi := range group.Items {
				ki := snapshotItem(ticket.ID, oi)
				if err := s.repo.InsertItem(ctx, tx, &ki); err != nil {
					return apperrors.Internal("failed to create ticket item", err)
				}
				ticket.Items = append(ticket.Items, ki)
				itemIDs = append(itemIDs, oi.ID)
				eventItems = append(eventItems, models.EventItem{
					Name:         oi.Name,
					VariantName:  oi.VariantName,
					Quantity:     oi.Quantity,
					Addons:       oi.Addons,
					Instructions: oi.Instructions,
				})
			}
			if err := s.orders.MarkItemsSent(ctx, tx, ticket.ID, itemIDs); err != nil {
				return apperrors.Internal("failed to mark items sent", err)
			}

			if err := s.enqueueTicketJob(ctx, tx, &ticket, tableNumber, order.Number, false); err != nil {
				return err
			}
			events = append(events, models.Event{
				Type:         models.EventKotCreated,
				Station:      ticket.Station,
				TableNumber:  tableNumber,
				OrderNumber:  order.Number,
				TicketNumber: ticket.Number,
				Items:        eventItems,
				Actor:        actor.StaffID,
				Timestamp:    time.Now().UTC(),
			})
			tickets = append(tickets, ticket)
		}

		if order.Status == models.OrderPending {
			if err := s.orders.UpdateStatus(ctx, tx, orderID, models.OrderConfirmed); err != nil {
				return apperrors.Internal("failed to confirm order", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		s.publisher.PublishEvent(ctx, ev)
	}
	if len(tickets) > 0 {
		s.logger.Info("tickets_dispatched", fmt.Sprintf("%d tickets dispatched for order %d", len(tickets), orderID), requestID, map[string]interface{}{
			"order_id": orderID,
			"tickets":  len(tickets),
			"staff_id": actor.StaffID,
		})
	}
	return tickets, nil
}

// Accept moves a ticket to accepted.
func (s *Service) Accept(ctx context.Context, ticketID int, actor models.Actor, requestID string) (*models.KotTicket, error) {
	return s.advance(ctx, ticketID, models.TicketAccepted, models.EventKotAccepted, actor, requestID)
}

// StartPreparing moves a ticket to preparing; its items follow.
func (s *Service) StartPreparing(ctx context.Context, ticketID int, actor models.Actor, requestID string) (*models.KotTicket, error) {
	return s.advance(ctx, ticketID, models.TicketPreparing, models.EventKotPreparing, actor, requestID)
}

// MarkReady moves a whole ticket to ready; its items follow.
func (s *Service) MarkReady(ctx context.Context, ticketID int, actor models.Actor, requestID string) (*models.KotTicket, error) {
	return s.advance(ctx, ticketID, models.TicketReady, models.EventKotReady, actor, requestID)
}

// MarkServed completes a ticket; when it was the order's last open
// ticket the order itself becomes served.
func (s *Service) MarkServed(ctx context.Context, ticketID int, actor models.Actor, requestID string) (*models.KotTicket, error) {
	return s.advance(ctx, ticketID, models.TicketServed, models.EventKotServed, actor, requestID)
}

// advance applies one audited state-machine step to a ticket, mirrors
// it onto the linked order items, and publishes the matching event.
func (s *Service) advance(ctx context.Context, ticketID int, to models.TicketStatus, eventType models.EventType, actor models.Actor, requestID string) (*models.KotTicket, error) {
	if err := s.policy.Require(actor, auth.CapTicketUpdate); err != nil {
		return nil, err
	}

	var ticket *models.KotTicket
	var event models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !ValidTransition(t.Status, to) {
			return apperrors.Conflict("ticket %s cannot move from %s to %s", t.Number, t.Status, to)
		}

		if err := s.repo.Transition(ctx, tx, ticketID, to, actor.StaffID); err != nil {
			return apperrors.Internal("failed to update ticket", err)
		}

		itemStatus := itemStatusFor(to)
		if itemStatus != "" {
			if err := s.repo.SetItemsStatus(ctx, tx, ticketID, itemStatus); err != nil {
				return apperrors.Internal("failed to update ticket items", err)
			}
			if err := s.repo.SyncOrderItemsStatus(ctx, tx, ticketID, itemStatus); err != nil {
				return apperrors.Internal("failed to sync order items", err)
			}
		}

		if to == models.TicketServed {
			unserved, err := s.repo.UnservedOrderItemCount(ctx, tx, t.OrderID)
			if err != nil {
				return apperrors.Internal("failed to count order items", err)
			}
			if unserved == 0 {
				if err := s.orders.UpdateStatus(ctx, tx, t.OrderID, models.OrderServed); err != nil {
					return apperrors.Internal("failed to update order", err)
				}
			}
		}

		orderNumber, tableNumber, err := s.orderContext(ctx, tx, t.OrderID)
		if err != nil {
			return err
		}
		t.Status = to
		ticket = t
		event = models.Event{
			Type:         eventType,
			Station:      t.Station,
			TableNumber:  tableNumber,
			OrderNumber:  orderNumber,
			TicketNumber: t.Number,
			Actor:        actor.StaffID,
			Timestamp:    time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishEvent(ctx, event)
	s.logger.Info("ticket_updated", fmt.Sprintf("Ticket %s is now %s", ticket.Number, ticket.Status), requestID, map[string]interface{}{
		"ticket_id": ticketID,
		"status":    ticket.Status,
		"staff_id":  actor.StaffID,
	})
	return ticket, nil
}

// MarkItemReady stamps one ticket item ready. When that was the last
// unready item the whole ticket advances to ready.
func (s *Service) MarkItemReady(ctx context.Context, kotItemID int, actor models.Actor, requestID string) error {
	if err := s.policy.Require(actor, auth.CapTicketUpdate); err != nil {
		return err
	}

	var events []models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		item, err := s.repo.GetItemForUpdate(ctx, tx, kotItemID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("ticket item %d does not exist", kotItemID)
		}
		if err != nil {
			return apperrors.Internal("failed to load ticket item", err)
		}
		switch item.Status {
		case models.ItemCancelled:
			return apperrors.Conflict("cancelled items cannot become ready")
		case models.ItemReady, models.ItemServed:
			return apperrors.Conflict("item is already %s", item.Status)
		}

		t, err := s.lockTicket(ctx, tx, item.TicketID)
		if err != nil {
			return err
		}
		if !ItemReadyAllowed(t.Status) {
			return apperrors.Conflict("ticket %s is %s; items become ready while the ticket is preparing", t.Number, t.Status)
		}

		if err := s.repo.MarkItemReady(ctx, tx, kotItemID); err != nil {
			return apperrors.Internal("failed to mark item ready", err)
		}
		if err := s.repo.SyncOrderItemStatus(ctx, tx, item.OrderItemID, models.ItemReady); err != nil {
			return apperrors.Internal("failed to sync order item", err)
		}

		orderNumber, tableNumber, err := s.orderContext(ctx, tx, t.OrderID)
		if err != nil {
			return err
		}
		events = append(events, models.Event{
			Type:         models.EventKotItemReady,
			Station:      t.Station,
			TableNumber:  tableNumber,
			OrderNumber:  orderNumber,
			TicketNumber: t.Number,
			Items: []models.EventItem{{
				Name:        item.Name,
				VariantName: item.VariantName,
				Quantity:    item.Quantity,
				Status:      string(models.ItemReady),
			}},
			Actor:     actor.StaffID,
			Timestamp: time.Now().UTC(),
		})

		unready, err := s.repo.UnreadyItemCount(ctx, tx, t.ID)
		if err != nil {
			return apperrors.Internal("failed to count unready items", err)
		}
		if unready == 0 && ValidTransition(t.Status, models.TicketReady) {
			if err := s.repo.Transition(ctx, tx, t.ID, models.TicketReady, actor.StaffID); err != nil {
				return apperrors.Internal("failed to update ticket", err)
			}
			events = append(events, models.Event{
				Type:         models.EventKotReady,
				Station:      t.Station,
				TableNumber:  tableNumber,
				OrderNumber:  orderNumber,
				TicketNumber: t.Number,
				Actor:        actor.StaffID,
				Timestamp:    time.Now().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		s.publisher.PublishEvent(ctx, ev)
	}
	s.logger.Info("ticket_item_ready", fmt.Sprintf("Ticket item %d marked ready", kotItemID), requestID, map[string]interface{}{
		"kot_item_id": kotItemID,
		"staff_id":    actor.StaffID,
	})
	return nil
}

// Cancel voids a whole ticket from the station side (out of stock,
// slip lost, equipment down). Its live order lines return to pending so
// the captain can re-dispatch or cancel them through the order.
func (s *Service) Cancel(ctx context.Context, ticketID int, actor models.Actor, req *models.CancelRequest, requestID string) error {
	if err := s.policy.Require(actor, auth.CapTicketUpdate); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return apperrors.Validation("%s", err.Error())
	}

	var event models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !ValidTransition(t.Status, models.TicketCancelled) {
			return apperrors.Conflict("ticket %s is %s and cannot be cancelled", t.Number, t.Status)
		}

		items, err := s.repo.GetItems(ctx, tx, ticketID)
		if err != nil {
			return apperrors.Internal("failed to load ticket items", err)
		}

		if err := s.repo.ResetOrderItems(ctx, tx, ticketID); err != nil {
			return apperrors.Internal("failed to reset order items", err)
		}
		if err := s.repo.CancelItems(ctx, tx, ticketID); err != nil {
			return apperrors.Internal("failed to cancel ticket items", err)
		}
		if err := s.repo.Cancel(ctx, tx, ticketID, actor.StaffID, req.Reason); err != nil {
			return apperrors.Internal("failed to cancel ticket", err)
		}

		orderNumber, tableNumber, err := s.orderContext(ctx, tx, t.OrderID)
		if err != nil {
			return err
		}
		eventItems := make([]models.EventItem, 0, len(items))
		for _, ki := range items {
			if ki.Status == models.ItemCancelled {
				continue
			}
			eventItems = append(eventItems, models.EventItem{
				Name:        ki.Name,
				VariantName: ki.VariantName,
				Quantity:    ki.Quantity,
			})
		}
		event = models.Event{
			Type:         models.EventKotCancelled,
			Station:      t.Station,
			TableNumber:  tableNumber,
			OrderNumber:  orderNumber,
			TicketNumber: t.Number,
			Items:        eventItems,
			Actor:        actor.StaffID,
			Timestamp:    time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.PublishEvent(ctx, event)
	s.logger.Info("ticket_cancelled", fmt.Sprintf("Ticket %d cancelled: %s", ticketID, req.Reason), requestID, map[string]interface{}{
		"ticket_id": ticketID,
		"reason":    req.Reason,
		"staff_id":  actor.StaffID,
	})
	return nil
}

// Reprint re-queues a ticket's slip with a reprint marker. The ticket
// itself does not change state; only the counter moves.
func (s *Service) Reprint(ctx context.Context, ticketID int, actor models.Actor, requestID string) (int, error) {
	if err := s.policy.Require(actor, auth.CapTicketSend); err != nil {
		return 0, err
	}

	var count int
	var event models.Event

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if t.Status == models.TicketCancelled {
			return apperrors.Conflict("cancelled tickets cannot be reprinted")
		}

		items, err := s.repo.GetItems(ctx, tx, ticketID)
		if err != nil {
			return apperrors.Internal("failed to load ticket items", err)
		}
		t.Items = items

		count, err = s.repo.IncrementReprint(ctx, tx, ticketID)
		if err != nil {
			return apperrors.Internal("failed to count reprint", err)
		}

		orderNumber, tableNumber, err := s.orderContext(ctx, tx, t.OrderID)
		if err != nil {
			return err
		}
		if err := s.enqueueTicketJob(ctx, tx, t, tableNumber, orderNumber, true); err != nil {
			return err
		}
		event = models.Event{
			Type:         models.EventKotReprinted,
			Station:      t.Station,
			TableNumber:  tableNumber,
			OrderNumber:  orderNumber,
			TicketNumber: t.Number,
			Actor:        actor.StaffID,
			Timestamp:    time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publisher.PublishEvent(ctx, event)
	s.logger.Info("ticket_reprinted", fmt.Sprintf("Ticket %d reprinted (#%d)", ticketID, count), requestID, map[string]interface{}{
		"ticket_id":     ticketID,
		"reprint_count": count,
		"staff_id":      actor.StaffID,
	})
	return count, nil
}

// GetTicket loads one ticket with its items.
func (s *Service) GetTicket(ctx context.Context, ticketID int) (*models.KotTicket, error) {
	var ticket *models.KotTicket
	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		items, err := s.repo.GetItems(ctx, tx, ticketID)
		if err != nil {
			return apperrors.Internal("failed to load ticket items", err)
		}
		t.Items = items
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *Service) lockTicket(ctx context.Context, tx pgx.Tx, ticketID int) (*models.KotTicket, error) {
	t, err := s.repo.GetTicketForUpdate(ctx, tx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("ticket %d does not exist", ticketID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load ticket", err)
	}
	return t, nil
}

// orderContext resolves the order number and table number carried on
// ticket events and slips.
func (s *Service) orderContext(ctx context.Context, tx pgx.Tx, orderID int) (string, string, error) {
	order, err := s.orders.GetOrder(ctx, tx, orderID)
	if err != nil {
		return "", "", apperrors.Internal("failed to load order", err)
	}
	tableNumber, err := s.orders.TableNumber(ctx, tx, order.TableID)
	if err != nil {
		return "", "", apperrors.Internal("failed to resolve table", err)
	}
	return order.Number, tableNumber, nil
}

func (s *Service) enqueueTicketJob(ctx context.Context, tx pgx.Tx, t *models.KotTicket, tableNumber, orderNumber string, reprint bool) error {
	jobType := printer.JobKOT
	if t.StationClass == models.StationBar {
		jobType = printer.JobBOT
	}
	job := &printer.Job{
		Type:        jobType,
		Station:     t.Station,
		Content:     printer.RenderTicket(t, tableNumber, orderNumber, reprint),
		ReferenceNo: t.Number,
	}
	if err := s.printQ.Enqueue(ctx, tx, job); err != nil {
		return apperrors.Internal("failed to enqueue print job", err)
	}
	return nil
}

// snapshotItem freezes one order line onto a ticket. The copy starts
// at pending, matching the kot_items row the insert produces;
// sent_to_kitchen exists only on the order side.
func snapshotItem(ticketID int, oi models.OrderItem) models.KotItem {
	return models.KotItem{
		TicketID:     ticketID,
		OrderItemID:  oi.ID,
		Name:         oi.Name,
		VariantName:  oi.VariantName,
		Quantity:     oi.Quantity,
		Addons:       oi.Addons,
		Instructions: oi.Instructions,
		Status:       models.ItemPending,
	}
}

// itemStatusFor maps a ticket-level status onto the item status that
// follows it. Accepted has no item-level mirror.
func itemStatusFor(to models.TicketStatus) models.ItemStatus {
	switch to {
	case models.TicketPreparing:
		return models.ItemPreparing
	case models.TicketReady:
		return models.ItemReady
	case models.TicketServed:
		return models.ItemServed
	}
	return ""
}
