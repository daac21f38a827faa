package tickets

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists kitchen/bar tickets and their item snapshots.
type Repository struct{}

// NewRepository creates the ticket repository.
func NewRepository() *Repository {
	return &Repository{}
}

// NextTicketNumber allocates the next station-prefixed, date-scoped
// number, e.g. KOT_20260826_004 or BOT_20260826_001.
func (r *Repository) NextTicketNumber(ctx context.Context, q database.Querier, class models.StationClass, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s_%s_", TicketPrefix(class), now.UTC().Format("20060102"))

	var seq int
	if err := q.QueryRow(ctx, database.NextTicketSeqSQL, prefix+"%").Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// InsertTicket persists a new ticket header.
func (r *Repository) InsertTicket(ctx context.Context, q database.Querier, t *models.KotTicket) error {
	return q.QueryRow(ctx, database.InsertTicketSQL,
		t.Number, t.OrderID, t.Station, t.StationClass, t.Priority).
		Scan(&t.ID, &t.CreatedAt)
}

// InsertItem persists one snapshot line on a ticket.
func (r *Repository) InsertItem(ctx context.Context, q database.Querier, item *models.KotItem) error {
	return q.QueryRow(ctx, database.InsertKotItemSQL,
		item.TicketID, item.OrderItemID, item.Name, item.VariantName,
		item.Quantity, item.Addons, item.Instructions).
		Scan(&item.ID)
}

func scanTicket(row pgx.Row) (*models.KotTicket, error) {
	var t models.KotTicket
	err := row.Scan(&t.ID, &t.Number, &t.OrderID, &t.Station, &t.StationClass, &t.Status, &t.Priority,
		&t.AcceptedBy, &t.AcceptedAt, &t.PreparingBy, &t.PreparingAt, &t.ReadyBy, &t.ReadyAt,
		&t.ServedBy, &t.ServedAt, &t.CancelledBy, &t.CancelReason, &t.CancelledAt,
		&t.ReprintCount, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTicketForUpdate loads one ticket with a row lock.
func (r *Repository) GetTicketForUpdate(ctx context.Context, q database.Querier, id int) (*models.KotTicket, error) {
	return scanTicket(q.QueryRow(ctx, database.GetTicketSQL, id))
}

func scanKotItem(row pgx.Row) (*models.KotItem, error) {
	var item models.KotItem
	err := row.Scan(&item.ID, &item.TicketID, &item.OrderItemID, &item.Name, &item.VariantName,
		&item.Quantity, &item.Addons, &item.Instructions, &item.Status, &item.ReadyAt, &item.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItems loads all item snapshots on a ticket.
func (r *Repository) GetItems(ctx context.Context, q database.Querier, ticketID int) ([]models.KotItem, error) {
	rows, err := q.Query(ctx, database.GetTicketItemsSQL, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.KotItem
	for rows.Next() {
		item, err := scanKotItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItemForUpdate loads one ticket item with a row lock.
func (r *Repository) GetItemForUpdate(ctx context.Context, q database.Querier, itemID int) (*models.KotItem, error) {
	return scanKotItem(q.QueryRow(ctx, database.GetKotItemSQL, itemID))
}

// Transition applies one audited status change to a ticket.
func (r *Repository) Transition(ctx context.Context, q database.Querier, ticketID int, to models.TicketStatus, actor int) error {
	var sql string
	switch to {
	case models.TicketAccepted:
		sql = database.AcceptTicketSQL
	case models.TicketPreparing:
		sql = database.PrepareTicketSQL
	case models.TicketReady:
		sql = database.ReadyTicketSQL
	case models.TicketServed:
		sql = database.ServeTicketSQL
	default:
		return fmt.Errorf("no transition statement for status %s", to)
	}
	_, err := q.Exec(ctx, sql, actor, ticketID)
	return err
}

// Cancel marks a ticket cancelled with its audit metadata.
func (r *Repository) Cancel(ctx context.Context, q database.Querier, ticketID int, actor int, reason string) error {
	_, err := q.Exec(ctx, database.CancelTicketSQL, actor, reason, ticketID)
	return err
}

// SetItemsStatus moves the items on a ticket to the given status when
// the whole ticket advances. Serving sweeps every live item; any other
// advance never demotes an item already ready or served.
func (r *Repository) SetItemsStatus(ctx context.Context, q database.Querier, ticketID int, status models.ItemStatus) error {
	if status == models.ItemServed {
		_, err := q.Exec(ctx, database.ServeTicketItemsSQL, ticketID)
		return err
	}
	_, err := q.Exec(ctx, database.SetTicketItemsStatusSQL, status, ticketID)
	return err
}

// CancelItems cancels every live item on a ticket.
func (r *Repository) CancelItems(ctx context.Context, q database.Querier, ticketID int) error {
	_, err := q.Exec(ctx, database.CancelTicketItemsSQL, ticketID)
	return err
}

// MarkItemReady stamps one ticket item ready.
func (r *Repository) MarkItemReady(ctx context.Context, q database.Querier, itemID int) error {
	_, err := q.Exec(ctx, database.ReadyKotItemSQL, itemID)
	return err
}

// UnreadyItemCount counts live items not yet ready on a ticket.
func (r *Repository) UnreadyItemCount(ctx context.Context, q database.Querier, ticketID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.CountUnreadyTicketItemsSQL, ticketID).Scan(&count)
	return count, err
}

// SyncOrderItemsStatus mirrors a ticket-level transition onto the
// linked order items, with the same no-demotion rule as
// SetItemsStatus.
func (r *Repository) SyncOrderItemsStatus(ctx context.Context, q database.Querier, ticketID int, status models.ItemStatus) error {
	if status == models.ItemServed {
		_, err := q.Exec(ctx, database.ServeOrderItemsByTicketSQL, ticketID)
		return err
	}
	_, err := q.Exec(ctx, database.SetOrderItemsStatusByTicketSQL, status, ticketID)
	return err
}

// SyncOrderItemStatus mirrors one ticket item's status onto its order
// line.
func (r *Repository) SyncOrderItemStatus(ctx context.Context, q database.Querier, orderItemID int, status models.ItemStatus) error {
	_, err := q.Exec(ctx, database.SetOrderItemStatusSQL, status, orderItemID)
	return err
}

// ResetOrderItems returns a cancelled ticket's live order lines to
// pending so the captain can re-dispatch them.
func (r *Repository) ResetOrderItems(ctx context.Context, q database.Querier, ticketID int) error {
	_, err := q.Exec(ctx, database.ResetOrderItemsByTicketSQL, ticketID)
	return err
}

// UnservedOrderItemCount counts order items not yet served.
func (r *Repository) UnservedOrderItemCount(ctx context.Context, q database.Querier, orderID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.CountUnservedOrderItemsSQL, orderID).Scan(&count)
	return count, err
}

// IncrementReprint bumps and returns the reprint counter.
func (r *Repository) IncrementReprint(ctx context.Context, q database.Querier, ticketID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.IncrementReprintSQL, ticketID).Scan(&count)
	return count, err
}
