package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists invoices and their frozen lines.
type Repository struct{}

// NewRepository creates the invoice repository.
func NewRepository() *Repository {
	return &Repository{}
}

// NextInvoiceNumber allocates the next number in the current financial
// year, e.g. INV/2026-27/0042.
func (r *Repository) NextInvoiceNumber(ctx context.Context, q database.Querier, now time.Time) (string, error) {
	prefix := InvoicePrefix(now)

	var seq int
	if err := q.QueryRow(ctx, database.NextInvoiceSeqSQL, prefix+"%").Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.Status,
		&inv.Subtotal, &inv.DiscountAmount, &inv.TaxableAmount,
		&inv.CGSTAmount, &inv.SGSTAmount, &inv.IGSTAmount, &inv.VATAmount, &inv.CessAmount,
		&inv.TotalTax, &inv.ServiceCharge, &inv.RoundOff, &inv.GrandTotal, &inv.PaymentStatus,
		&inv.CustomerName, &inv.CustomerPhone, &inv.GeneratedBy, &inv.DuplicateCount,
		&inv.CancelReason, &inv.CancelledAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ActiveInvoiceByOrder finds the live invoice of an order, or nil.
func (r *Repository) ActiveInvoiceByOrder(ctx context.Context, q database.Querier, orderID int) (*models.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, database.GetActiveInvoiceByOrderSQL, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// InsertInvoice persists a new invoice header.
func (r *Repository) InsertInvoice(ctx context.Context, q database.Querier, inv *models.Invoice) error {
	return q.QueryRow(ctx, database.InsertInvoiceSQL,
		inv.Number, inv.OrderID, inv.Subtotal, inv.DiscountAmount, inv.TaxableAmount,
		inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.VATAmount, inv.CessAmount,
		inv.TotalTax, inv.ServiceCharge, inv.RoundOff, inv.GrandTotal,
		inv.CustomerName, inv.CustomerPhone, inv.GeneratedBy).
		Scan(&inv.ID, &inv.CreatedAt)
}

// InsertItem persists one frozen invoice line.
func (r *Repository) InsertItem(ctx context.Context, q database.Querier, item *models.InvoiceItem) error {
	return q.QueryRow(ctx, database.InsertInvoiceItemSQL,
		item.InvoiceID, item.Name, item.VariantName, item.Quantity,
		item.UnitPrice, item.TaxAmount, item.TotalPrice).
		Scan(&item.ID)
}

// InsertDiscount persists one applied discount.
func (r *Repository) InsertDiscount(ctx context.Context, q database.Querier, d *models.InvoiceDiscount) error {
	return q.QueryRow(ctx, database.InsertInvoiceDiscountSQL,
		d.InvoiceID, d.Label, d.Kind, d.Value, d.PreTax, d.Amount).
		Scan(&d.ID)
}

// GetInvoice loads one invoice header.
func (r *Repository) GetInvoice(ctx context.Context, q database.Querier, id int) (*models.Invoice, error) {
	return scanInvoice(q.QueryRow(ctx, database.GetInvoiceSQL, id))
}

// GetInvoiceForUpdate loads one invoice header with a row lock.
func (r *Repository) GetInvoiceForUpdate(ctx context.Context, q database.Querier, id int) (*models.Invoice, error) {
	return scanInvoice(q.QueryRow(ctx, database.GetInvoiceForUpdateSQL, id))
}

// GetItems loads the frozen lines of an invoice.
func (r *Repository) GetItems(ctx context.Context, q database.Querier, invoiceID int) ([]models.InvoiceItem, error) {
	rows, err := q.Query(ctx, database.GetInvoiceItemsSQL, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(&item.ID, &item.InvoiceID, &item.Name, &item.VariantName,
			&item.Quantity, &item.UnitPrice, &item.TaxAmount, &item.TotalPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetDiscounts loads the applied discounts of an invoice.
func (r *Repository) GetDiscounts(ctx context.Context, q database.Querier, invoiceID int) ([]models.InvoiceDiscount, error) {
	rows, err := q.Query(ctx, database.GetInvoiceDiscountsSQL, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []models.InvoiceDiscount
	for rows.Next() {
		var d models.InvoiceDiscount
		err := rows.Scan(&d.ID, &d.InvoiceID, &d.Label, &d.Kind, &d.Value, &d.PreTax, &d.Amount)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// CancelInvoice voids an invoice with its reason.
func (r *Repository) CancelInvoice(ctx context.Context, q database.Querier, invoiceID int, reason string) error {
	_, err := q.Exec(ctx, database.CancelInvoiceSQL, reason, invoiceID)
	return err
}

// IncrementDuplicate bumps and returns the duplicate-print counter.
func (r *Repository) IncrementDuplicate(ctx context.Context, q database.Querier, invoiceID int) (int, error) {
	var count int
	err := q.QueryRow(ctx, database.IncrementDuplicateSQL, invoiceID).Scan(&count)
	return count, err
}

// UpdatePaymentStatus moves the invoice settlement marker.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, q database.Querier, invoiceID int, status models.InvoicePaymentStatus) error {
	_, err := q.Exec(ctx, database.UpdateInvoicePaymentStatusSQL, status, invoiceID)
	return err
}

// SumCompletedPayments totals the completed payments against an
// invoice.
func (r *Repository) SumCompletedPayments(ctx context.Context, q database.Querier, invoiceID int) (float64, error) {
	var sum float64
	err := q.QueryRow(ctx, database.SumCompletedPaymentsSQL, invoiceID).Scan(&sum)
	return sum, err
}

// ItemTaxComponents resolves the component rates that apply to one menu
// item.
func (r *Repository) ItemTaxComponents(ctx context.Context, q database.Querier, menuItemID int) ([]TaxLine, error) {
	rows, err := q.Query(ctx, database.GetItemTaxComponentsSQL, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []TaxLine
	for rows.Next() {
		var component string
		var rate float64
		if err := rows.Scan(&component, &rate); err != nil {
			return nil, err
		}
		lines = append(lines, TaxLine{Component: models.TaxComponent(component), Rate: rate})
	}
	return lines, rows.Err()
}
