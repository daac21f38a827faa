package tables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// Repository persists tables, sessions, and merge groups.
type Repository struct{}

// NewRepository creates the table repository.
func NewRepository() *Repository {
	return &Repository{}
}

func scanTable(row pgx.Row) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Shape, &t.Status,
		&t.MergedInto, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTable loads one table.
func (r *Repository) GetTable(ctx context.Context, q database.Querier, id int) (*models.Table, error) {
	return scanTable(q.QueryRow(ctx, database.GetTableSQL, id))
}

// GetTableForUpdate loads one table with a row lock.
func (r *Repository) GetTableForUpdate(ctx context.Context, q database.Querier, id int) (*models.Table, error) {
	return scanTable(q.QueryRow(ctx, database.GetTableForUpdateSQL, id))
}

// ListTables returns all tables for floor views.
func (r *Repository) ListTables(ctx context.Context, q database.Querier) ([]models.Table, error) {
	rows, err := q.Query(ctx, database.ListTablesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// UpdateTableStatus sets a table's status.
func (r *Repository) UpdateTableStatus(ctx context.Context, q database.Querier, id int, status models.TableStatus) error {
	_, err := q.Exec(ctx, database.UpdateTableStatusSQL, status, id)
	return err
}

// MergeMember marks a table as a merged member of a primary.
func (r *Repository) MergeMember(ctx context.Context, q database.Querier, primaryID, memberID int) error {
	_, err := q.Exec(ctx, database.MergeMemberTableSQL, primaryID, memberID)
	return err
}

// SetCapacity updates a table's capacity.
func (r *Repository) SetCapacity(ctx context.Context, q database.Querier, id, capacity int) error {
	_, err := q.Exec(ctx, database.SetTableCapacitySQL, capacity, id)
	return err
}

// RestoreTable resets a merged member or primary to its original
// capacity and status.
func (r *Repository) RestoreTable(ctx context.Context, q database.Querier, id, capacity int, status models.TableStatus) error {
	_, err := q.Exec(ctx, database.RestoreTableSQL, capacity, status, id)
	return err
}

// InsertSession creates an occupancy session.
func (r *Repository) InsertSession(ctx context.Context, q database.Querier, s *models.TableSession) error {
	return q.QueryRow(ctx, database.InsertSessionSQL,
		s.TableID, s.GuestCount, s.GuestName, s.GuestPhone, s.StaffID, s.Notes).
		Scan(&s.ID, &s.StartedAt)
}

// ActiveSession returns the active or billing session on a table, or
// nil when the table is free.
func (r *Repository) ActiveSession(ctx context.Context, q database.Querier, tableID int) (*models.TableSession, error) {
	var s models.TableSession
	err := q.QueryRow(ctx, database.GetActiveSessionByTableSQL, tableID).Scan(
		&s.ID, &s.TableID, &s.GuestCount, &s.GuestName, &s.GuestPhone,
		&s.StaffID, &s.Notes, &s.Status, &s.OrderID, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CompleteSession marks a session completed and clears its order link.
func (r *Repository) CompleteSession(ctx context.Context, q database.Querier, sessionID int) error {
	_, err := q.Exec(ctx, database.CompleteSessionSQL, sessionID)
	return err
}

// TransferOwner reassigns the owning staff member.
func (r *Repository) TransferOwner(ctx context.Context, q database.Querier, sessionID, newStaffID int) error {
	_, err := q.Exec(ctx, database.TransferSessionOwnerSQL, newStaffID, sessionID)
	return err
}

// SetSessionStatus moves a session between active and billing.
func (r *Repository) SetSessionStatus(ctx context.Context, q database.Querier, sessionID int, status models.SessionStatus) error {
	_, err := q.Exec(ctx, database.SetSessionStatusSQL, status, sessionID)
	return err
}

// SetSessionOrder links the session to its order.
func (r *Repository) SetSessionOrder(ctx context.Context, q database.Querier, sessionID, orderID int) error {
	_, err := q.Exec(ctx, database.SetSessionOrderSQL, orderID, sessionID)
	return err
}

// InsertMergeGroup opens a merge group.
func (r *Repository) InsertMergeGroup(ctx context.Context, q database.Querier, g *models.TableMergeGroup) error {
	return q.QueryRow(ctx, database.InsertMergeGroupSQL, g.PrimaryTableID, g.MemberCapacities).
		Scan(&g.ID, &g.MergedAt)
}

// OpenMergeGroup returns the open merge group for a primary, or nil.
func (r *Repository) OpenMergeGroup(ctx context.Context, q database.Querier, primaryID int) (*models.TableMergeGroup, error) {
	var g models.TableMergeGroup
	err := q.QueryRow(ctx, database.GetOpenMergeGroupSQL, primaryID).Scan(
		&g.ID, &g.PrimaryTableID, &g.MemberCapacities, &g.MergedAt, &g.UnmergedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CloseMergeGroup stamps unmerged_at on a group.
func (r *Repository) CloseMergeGroup(ctx context.Context, q database.Querier, groupID int) error {
	_, err := q.Exec(ctx, database.CloseMergeGroupSQL, groupID)
	return err
}
