package payments

import (
	"context"
	"fmt"
	"time"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists payment transactions and their split rows.
type Repository struct{}

// NewRepository creates the payment repository.
func NewRepository() *Repository {
	return &Repository{}
}

// NextPaymentNumber allocates the next date-scoped sequential number,
// e.g. PAY_20260826_007.
func (r *Repository) NextPaymentNumber(ctx context.Context, q database.Querier, now time.Time) (string, error) {
	prefix := fmt.Sprintf("PAY_%s_", now.UTC().Format("20060102"))

	var seq int
	if err := q.QueryRow(ctx, database.NextPaymentSeqSQL, prefix+"%").Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// InsertPayment persists one settlement transaction.
func (r *Repository) InsertPayment(ctx context.Context, q database.Querier, p *models.Payment) error {
	return q.QueryRow(ctx, database.InsertPaymentSQL,
		p.Number, p.InvoiceID, p.OrderID, p.Mode, p.Amount, p.TipAmount, p.TotalAmount,
		p.CardLastFour, p.UPITransactionID, p.ReceivedBy).
		Scan(&p.ID, &p.CreatedAt)
}

// InsertSplit persists one sub-mode row of a split payment.
func (r *Repository) InsertSplit(ctx context.Context, q database.Querier, sp *models.SplitPayment) error {
	return q.QueryRow(ctx, database.InsertSplitPaymentSQL,
		sp.PaymentID, sp.Position, sp.Mode, sp.Amount, sp.CardLastFour, sp.UPITransactionID).
		Scan(&sp.ID)
}
