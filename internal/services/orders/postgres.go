package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists orders and order items, and reads the catalog.
type Repository struct{}

// NewRepository creates the order repository.
func NewRepository() *Repository {
	return &Repository{}
}

// MenuItem is a catalog row resolved at add time.
type MenuItem struct {
	ID           int
	Name         string
	Price        float64
	TaxGroupID   *int
	Station      string
	StationClass string
}

// Variant is a priced variant of a menu item.
type Variant struct {
	ID    int
	Name  string
	Price float64
}

// CancellationReason is a configured reason with its approval policy.
type CancellationReason struct {
	Reason           string
	RequiresApproval bool
}

// GetMenuItem resolves one active menu item with its station.
func (r *Repository) GetMenuItem(ctx context.Context, q database.Querier, id int) (*MenuItem, error) {
	var m MenuItem
	err := q.QueryRow(ctx, database.GetMenuItemSQL, id).Scan(
		&m.ID, &m.Name, &m.Price, &m.TaxGroupID, &m.Station, &m.StationClass)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetVariant resolves one variant of a menu item.
func (r *Repository) GetVariant(ctx context.Context, q database.Querier, variantID, menuItemID int) (*Variant, error) {
	var v Variant
	err := q.QueryRow(ctx, database.GetVariantSQL, variantID, menuItemID).Scan(&v.ID, &v.Name, &v.Price)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// TaxRate returns the summed component rate of a tax group. A nil group
// means zero tax.
func (r *Repository) TaxRate(ctx context.Context, q database.Querier, taxGroupID *int) (float64, error) {
	if taxGroupID == nil {
		return 0, nil
	}
	rows, err := q.Query(ctx, database.GetTaxComponentsSQL, *taxGroupID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var total float64
	for rows.Next() {
		var component string
		var rate float64
		if err := rows.Scan(&component, &rate); err != nil {
			return 0, err
		}
		total += rate
	}
	return total, rows.Err()
}

// GetCancellationReason loads a configured reason, or nil when unknown.
func (r *Repository) GetCancellationReason(ctx context.Context, q database.Querier, reason string) (*CancellationReason, error) {
	var cr CancellationReason
	err := q.QueryRow(ctx, database.GetCancellationReasonSQL, reason).Scan(&cr.Reason, &cr.RequiresApproval)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// NextOrderNumber allocates the next date-scoped sequential number,
// e.g. ORD_20260826_003.
func (r *Repository) NextOrderNumber(ctx context.Context, q database.Querier, now time.Time) (string, error) {
	date := now.UTC().Format("20060102")
	prefix := fmt.Sprintf("ORD_%s_", date)

	var seq int
	if err := q.QueryRow(ctx, database.NextOrderSeqSQL, prefix+"%").Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// InsertOrder persists a new order header.
func (r *Repository) InsertOrder(ctx context.Context, q database.Querier, o *models.Order) error {
	return q.QueryRow(ctx, database.InsertOrderSQL,
		o.Number, o.Type, o.TableID, o.SessionID, o.GuestCount, o.GuestName, o.GuestPhone, o.CreatedBy).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// InsertItem persists one order line.
func (r *Repository) InsertItem(ctx context.Context, q database.Querier, item *models.OrderItem) error {
	return q.QueryRow(ctx, database.InsertOrderItemSQL,
		item.OrderID, item.MenuItemID, item.Name, item.VariantName, item.Station, item.StationClass,
		item.Quantity, item.UnitPrice, item.TaxAmount, item.TotalPrice, item.Addons, item.Instructions).
		Scan(&item.ID, &item.CreatedAt)
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.Number, &o.Type, &o.TableID, &o.SessionID, &o.GuestCount,
		&o.GuestName, &o.GuestPhone, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount, &o.CreatedBy,
		&o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder loads one order header.
func (r *Repository) GetOrder(ctx context.Context, q database.Querier, id int) (*models.Order, error) {
	return scanOrder(q.QueryRow(ctx, database.GetOrderSQL, id))
}

// GetOrderForUpdate loads one order header with a row lock so
// concurrent mutations serialize around the totals recomputation.
func (r *Repository) GetOrderForUpdate(ctx context.Context, q database.Querier, id int) (*models.Order, error) {
	return scanOrder(q.QueryRow(ctx, database.GetOrderForUpdateSQL, id))
}

func scanOrderItem(row pgx.Row) (*models.OrderItem, error) {
	var item models.OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.VariantName,
		&item.Station, &item.StationClass, &item.Quantity, &item.UnitPrice, &item.TaxAmount,
		&item.TotalPrice, &item.Addons, &item.Instructions, &item.Status, &item.KotTicketID,
		&item.CancelReason, &item.CancelledBy, &item.CancelledAt, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItems loads all items of an order.
func (r *Repository) GetItems(ctx context.Context, q database.Querier, orderID int) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItemForUpdate loads one item with a row lock.
func (r *Repository) GetItemForUpdate(ctx context.Context, q database.Querier, itemID int) (*models.OrderItem, error) {
	return scanOrderItem(q.QueryRow(ctx, database.GetOrderItemSQL, itemID))
}

// ItemOrderID resolves an item's order without taking a lock, so
// callers can lock the order row before the item row.
func (r *Repository) ItemOrderID(ctx context.Context, q database.Querier, itemID int) (int, error) {
	var orderID int
	err := q.QueryRow(ctx, database.GetOrderItemOrderSQL, itemID).Scan(&orderID)
	return orderID, err
}

// PendingItemsForUpdate locks and returns all pending items of an order
// for ticket dispatch.
func (r *Repository) PendingItemsForUpdate(ctx context.Context, q database.Querier, orderID int) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, database.PendingOrderItemsForUpdateSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkItemsSent stamps items as dispatched with their ticket
// back-reference.
func (r *Repository) MarkItemsSent(ctx context.Context, q database.Querier, ticketID int, itemIDs []int) error {
	_, err := q.Exec(ctx, database.MarkItemsSentSQL, ticketID, itemIDs)
	return err
}

// UpdateTotals writes the recomputed aggregates.
func (r *Repository) UpdateTotals(ctx context.Context, q database.Querier, orderID int, subtotal, tax, total float64) error {
	_, err := q.Exec(ctx, database.UpdateOrderTotalsSQL, subtotal, tax, total, orderID)
	return err
}

// UpdateStatus sets the order status.
func (r *Repository) UpdateStatus(ctx context.Context, q database.Querier, orderID int, status models.OrderStatus) error {
	_, err := q.Exec(ctx, database.UpdateOrderStatusSQL, status, orderID)
	return err
}

// UpdatePaymentStatus sets both the order status and its payment
// progress.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, q database.Querier, orderID int, status models.OrderStatus, progress models.PaymentProgress) error {
	_, err := q.Exec(ctx, database.UpdateOrderPaymentStatusSQL, status, progress, orderID)
	return err
}

// CancelOrder marks the order cancelled with its reason.
func (r *Repository) CancelOrder(ctx context.Context, q database.Querier, orderID int, reason string) error {
	_, err := q.Exec(ctx, database.CancelOrderSQL, reason, orderID)
	return err
}

// CancelItem marks one item cancelled with its audit metadata.
func (r *Repository) CancelItem(ctx context.Context, q database.Querier, itemID int, reason string, cancelledBy int) error {
	_, err := q.Exec(ctx, database.CancelOrderItemSQL, reason, cancelledBy, itemID)
	return err
}

// CancelPendingItems cancels every non-terminal item of an order.
func (r *Repository) CancelPendingItems(ctx context.Context, q database.Querier, orderID int, reason string, cancelledBy int) error {
	_, err := q.Exec(ctx, database.CancelPendingOrderItemsSQL, reason, cancelledBy, orderID)
	return err
}

// TicketHeader is the slice of a ticket the cancellation path needs to
// route cancel slips without loading the full ticket.
type TicketHeader struct {
	ID           int
	Number       string
	Station      string
	StationClass string
	Status       models.TicketStatus
}

// GetTicketHeader locks and loads one ticket's routing fields.
func (r *Repository) GetTicketHeader(ctx context.Context, q database.Querier, ticketID int) (*TicketHeader, error) {
	h := TicketHeader{ID: ticketID}
	err := q.QueryRow(ctx, database.GetTicketHeaderSQL, ticketID).
		Scan(&h.Number, &h.Station, &h.StationClass, &h.Status)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// NonTerminalTickets locks and returns every ticket of an order that is
// neither served nor cancelled.
func (r *Repository) NonTerminalTickets(ctx context.Context, q database.Querier, orderID int) ([]models.KotTicket, error) {
	rows, err := q.Query(ctx, database.NonTerminalTicketsByOrderSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.KotTicket
	for rows.Next() {
		var t models.KotTicket
		err := rows.Scan(&t.ID, &t.Number, &t.OrderID, &t.Station, &t.StationClass, &t.Status, &t.Priority,
			&t.AcceptedBy, &t.AcceptedAt, &t.PreparingBy, &t.PreparingAt, &t.ReadyBy, &t.ReadyAt,
			&t.ServedBy, &t.ServedAt, &t.CancelledBy, &t.CancelReason, &t.CancelledAt,
			&t.ReprintCount, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CancelTicketItemByOrderItem propagates an order-item cancellation to
// its live ticket copy, returning the affected ticket ids.
func (r *Repository) CancelTicketItemByOrderItem(ctx context.Context, q database.Querier, orderItemID int) ([]int, error) {
	rows, err := q.Query(ctx, database.CancelKotItemByOrderItemSQL, orderItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticketIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ticketIDs = append(ticketIDs, id)
	}
	return ticketIDs, rows.Err()
}

// LiveTicketItemCount counts a ticket's non-cancelled items.
func (r *Repository) LiveTicketItemCount(ctx context.Context, q database.Querier, ticketID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.CountLiveTicketItemsSQL, ticketID).Scan(&count)
	return count, err
}

// CancelTicket marks a whole ticket cancelled.
func (r *Repository) CancelTicket(ctx context.Context, q database.Querier, ticketID int, reason string, cancelledBy int) error {
	_, err := q.Exec(ctx, database.CancelTicketSQL, cancelledBy, reason, ticketID)
	return err
}

// CancelTicketItems cancels every live item on a ticket.
func (r *Repository) CancelTicketItems(ctx context.Context, q database.Querier, ticketID int) error {
	_, err := q.Exec(ctx, database.CancelTicketItemsSQL, ticketID)
	return err
}

// CountPayments counts completed payments recorded against an order.
func (r *Repository) CountPayments(ctx context.Context, q database.Querier, orderID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.CountPaymentsByOrderSQL, orderID).Scan(&count)
	return count, err
}

// TableNumber resolves a table's display number, empty for takeaway.
func (r *Repository) TableNumber(ctx context.Context, q database.Querier, tableID *int) (string, error) {
	if tableID == nil {
		return "", nil
	}
	var number string
	err := q.QueryRow(ctx, database.GetTableNumberSQL, *tableID).Scan(&number)
	if err != nil {
		return "", err
	}
	return number, nil
}
