package tables

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/apperrors"
	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

// Service owns the table / session / merge-group lifecycle.
type Service struct {
	db        *database.DB
	repo      *Repository
	publisher *messaging.Publisher
	policy    *auth.Policy
	logger    *logger.Logger
}

// NewService creates the table session manager.
func NewService(db *database.DB, publisher *messaging.Publisher, policy *auth.Policy, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(),
		publisher: publisher,
		policy:    policy,
		logger:    log,
	}
}

// GetTable loads one table.
func (s *Service) GetTable(ctx context.Context, tableID int) (*models.Table, error) {
	t, err := s.repo.GetTable(ctx, s.db.Pool, tableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("table %d does not exist", tableID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load table", err)
	}
	return t, nil
}

// ListTables returns all tables.
func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.repo.ListTables(ctx, s.db.Pool)
	if err != nil {
		return nil, apperrors.Internal("failed to list tables", err)
	}
	return tables, nil
}

// ActiveSession returns the active/billing session on a table, or nil.
// Exposed for the order manager's ownership checks.
func (s *Service) ActiveSession(ctx context.Context, q database.Querier, tableID int) (*models.TableSession, error) {
	session, err := s.repo.ActiveSession(ctx, q, tableID)
	if err != nil {
		return nil, apperrors.Internal("failed to load session", err)
	}
	return session, nil
}

// SetSessionOrder links a newly created order to its session.
func (s *Service) SetSessionOrder(ctx context.Context, q database.Querier, sessionID, orderID int) error {
	if err := s.repo.SetSessionOrder(ctx, q, sessionID, orderID); err != nil {
		return apperrors.Internal("failed to link order to session", err)
	}
	return nil
}

// StartSession seats guests on a table. Fails with conflict when the
// table already has an active or billing session, or is blocked or a
// merged member.
func (s *Service) StartSession(ctx context.Context, tableID int, actor models.Actor, req *models.StartSessionRequest, requestID string) (*models.TableSession, error) {
	if err := s.policy.Require(actor, auth.CapSessionStart); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	var session *models.TableSession
	var table *models.Table

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.repo.GetTableForUpdate(ctx, tx, tableID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("table %d does not exist", tableID)
		}
		if err != nil {
			return apperrors.Internal("failed to load table", err)
		}

		if t.Status == models.TableBlocked {
			return apperrors.Conflict("table %s is blocked", t.Number)
		}
		if t.Status == models.TableMerged {
			return apperrors.Conflict("table %s is merged into table %d and not independently orderable", t.Number, *t.MergedInto)
		}

		existing, err := s.repo.ActiveSession(ctx, tx, tableID)
		if err != nil {
			return apperrors.Internal("failed to check existing session", err)
		}
		if existing != nil {
			return apperrors.Conflict("table %s already has an active session", t.Number)
		}

		session = &models.TableSession{
			TableID:    tableID,
			GuestCount: req.GuestCount,
			GuestName:  req.GuestName,
			GuestPhone: req.GuestPhone,
			StaffID:    actor.StaffID,
			Notes:      req.Notes,
			Status:     models.SessionActive,
		}
		if err := s.repo.InsertSession(ctx, tx, session); err != nil {
			// Backstop for two concurrent seatings racing past the read.
			if database.IsUniqueViolation(err, "ux_sessions_active_table") {
				return apperrors.Conflict("table %s already has an active session", t.Number)
			}
			return apperrors.Internal("failed to create session", err)
		}

		if err := s.repo.UpdateTableStatus(ctx, tx, tableID, models.TableOccupied); err != nil {
			return apperrors.Internal("failed to update table status", err)
		}
		t.Status = models.TableOccupied
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session_started", fmt.Sprintf("Session started on table %s", table.Number), requestID, map[string]interface{}{
		"table_id":    tableID,
		"session_id":  session.ID,
		"guest_count": session.GuestCount,
		"staff_id":    actor.StaffID,
	})
	s.publishTableUpdate(ctx, table)

	return session, nil
}

// EndSession completes the session on a table, auto-unmerges a merge
// primary, and frees the table.
func (s *Service) EndSession(ctx context.Context, tableID int, actor models.Actor, requestID string) error {
	if err := s.policy.Require(actor, auth.CapSessionEnd); err != nil {
		return err
	}

	var table *models.Table
	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.ReleaseTableTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		table = t
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("session_ended", fmt.Sprintf("Session ended on table %s", table.Number), requestID, map[string]interface{}{
		"table_id": tableID,
		"staff_id": actor.StaffID,
	})
	s.publishTableUpdate(ctx, table)
	return nil
}

// ReleaseTableTx is the shared release path: completes the active
// session, auto-unmerges if the table is a merge primary, and restores
// the table status. It runs inside the caller's transaction; the caller
// publishes table:updated after commit. Tables blocked independently of
// the session stay blocked.
func (s *Service) ReleaseTableTx(ctx context.Context, tx pgx.Tx, tableID int) (*models.Table, error) {
	table, err := s.repo.GetTableForUpdate(ctx, tx, tableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("table %d does not exist", tableID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load table", err)
	}

	session, err := s.repo.ActiveSession(ctx, tx, tableID)
	if err != nil {
		return nil, apperrors.Internal("failed to load session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("table %d has no active session", tableID)
	}

	if err := s.repo.CompleteSession(ctx, tx, session.ID); err != nil {
		return nil, apperrors.Internal("failed to complete session", err)
	}

	if _, err := s.unmergeTx(ctx, tx, table); err != nil {
		return nil, err
	}

	next := models.TableAvailable
	if table.Status == models.TableBlocked {
		next = models.TableBlocked
	}
	if err := s.repo.UpdateTableStatus(ctx, tx, tableID, next); err != nil {
		return nil, apperrors.Internal("failed to update table status", err)
	}
	table.Status = next
	return table, nil
}

// TransferOwnership reassigns a session's owning staff member.
// Elevated roles only.
func (s *Service) TransferOwnership(ctx context.Context, tableID int, actor models.Actor, newStaffID int, requestID string) error {
	if err := s.policy.Require(actor, auth.CapSessionTransfer); err != nil {
		return err
	}

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		session, err := s.repo.ActiveSession(ctx, tx, tableID)
		if err != nil {
			return apperrors.Internal("failed to load session", err)
		}
		if session == nil {
			return apperrors.NotFound("table %d has no active session", tableID)
		}
		if err := s.repo.TransferOwner(ctx, tx, session.ID, newStaffID); err != nil {
			return apperrors.Internal("failed to transfer ownership", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("ownership_transferred", fmt.Sprintf("Table %d session transferred to staff %d", tableID, newStaffID), requestID, map[string]interface{}{
		"table_id":     tableID,
		"new_staff_id": newStaffID,
		"by":           actor.StaffID,
	})
	return nil
}

// MergeTables combines member tables into a primary. All members (and
// the primary) must be available.
func (s *Service) MergeTables(ctx context.Context, primaryID int, actor models.Actor, req *models.MergeTablesRequest, requestID string) (*models.TableMergeGroup, error) {
	if err := s.policy.Require(actor, auth.CapTableMerge); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	for _, id := range req.MemberTableIDs {
		if id == primaryID {
			return nil, apperrors.Validation("primary table cannot be its own merge member")
		}
	}

	var group *models.TableMergeGroup
	var primary *models.Table

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		p, err := s.repo.GetTableForUpdate(ctx, tx, primaryID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("table %d does not exist", primaryID)
		}
		if err != nil {
			return apperrors.Internal("failed to load primary table", err)
		}
		if !MergeableMember(*p) {
			return apperrors.Conflict("table %s is not available for merging", p.Number)
		}

		members := make([]models.Table, 0, len(req.MemberTableIDs))
		for _, id := range req.MemberTableIDs {
			m, err := s.repo.GetTableForUpdate(ctx, tx, id)
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("table %d does not exist", id)
			}
			if err != nil {
				return apperrors.Internal("failed to load member table", err)
			}
			if !MergeableMember(*m) {
				return apperrors.Conflict("table %s is not available for merging", m.Number)
			}
			members = append(members, *m)
		}

		group = &models.TableMergeGroup{
			PrimaryTableID:   primaryID,
			MemberCapacities: OriginalCapacities(*p, members),
		}
		if err := s.repo.InsertMergeGroup(ctx, tx, group); err != nil {
			if database.IsUniqueViolation(err, "ux_merge_open_primary") {
				return apperrors.Conflict("table %s is already a merge primary", p.Number)
			}
			return apperrors.Internal("failed to open merge group", err)
		}

		if err := s.repo.SetCapacity(ctx, tx, primaryID, CombinedCapacity(*p, members)); err != nil {
			return apperrors.Internal("failed to update primary capacity", err)
		}
		for _, m := range members {
			if err := s.repo.MergeMember(ctx, tx, primaryID, m.ID); err != nil {
				return apperrors.Internal("failed to mark member merged", err)
			}
		}

		p.Capacity = CombinedCapacity(*p, members)
		primary = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tables_merged", fmt.Sprintf("Merged %d tables into %s", len(req.MemberTableIDs), primary.Number), requestID, map[string]interface{}{
		"primary_table_id": primaryID,
		"member_table_ids": req.MemberTableIDs,
		"combined":         primary.Capacity,
	})
	s.publishTableUpdate(ctx, primary)

	return group, nil
}

// UnmergeTables explicitly dissolves a merge group. Calling it on a
// table with no open group is a no-op, not an error.
func (s *Service) UnmergeTables(ctx context.Context, primaryID int, actor models.Actor, requestID string) (bool, error) {
	if err := s.policy.Require(actor, auth.CapTableMerge); err != nil {
		return false, err
	}

	var unmerged bool
	var table *models.Table

	err := s.db.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.repo.GetTableForUpdate(ctx, tx, primaryID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("table %d does not exist", primaryID)
		}
		if err != nil {
			return apperrors.Internal("failed to load table", err)
		}
		done, err := s.unmergeTx(ctx, tx, t)
		if err != nil {
			return err
		}
		unmerged = done
		table = t
		return nil
	})
	if err != nil {
		return false, err
	}

	if unmerged {
		s.logger.Info("tables_unmerged", fmt.Sprintf("Merge group on table %d dissolved", primaryID), requestID, nil)
		s.publishTableUpdate(ctx, table)
	}
	return unmerged, nil
}

// unmergeTx restores every member (and the primary's capacity) from the
// open merge group, if any. Idempotent: no open group means nothing to
// do.
func (s *Service) unmergeTx(ctx context.Context, tx pgx.Tx, primary *models.Table) (bool, error) {
	group, err := s.repo.OpenMergeGroup(ctx, tx, primary.ID)
	if err != nil {
		return false, apperrors.Internal("failed to load merge group", err)
	}
	if group == nil {
		return false, nil
	}

	for tableID, capacity := range group.MemberCapacities {
		if tableID == primary.ID {
			if err := s.repo.SetCapacity(ctx, tx, tableID, capacity); err != nil {
				return false, apperrors.Internal("failed to restore primary capacity", err)
			}
			primary.Capacity = capacity
			continue
		}
		if err := s.repo.RestoreTable(ctx, tx, tableID, capacity, models.TableAvailable); err != nil {
			return false, apperrors.Internal("failed to restore member table", err)
		}
	}

	if err := s.repo.CloseMergeGroup(ctx, tx, group.ID); err != nil {
		return false, apperrors.Internal("failed to close merge group", err)
	}
	return true, nil
}

// MarkBilling moves the table and session into billing state once a
// bill is generated.
func (s *Service) MarkBilling(ctx context.Context, tx pgx.Tx, tableID int) error {
	session, err := s.repo.ActiveSession(ctx, tx, tableID)
	if err != nil {
		return apperrors.Internal("failed to load session", err)
	}
	if session == nil {
		return nil
	}
	if err := s.repo.SetSessionStatus(ctx, tx, session.ID, models.SessionBilling); err != nil {
		return apperrors.Internal("failed to move session to billing", err)
	}
	if err := s.repo.UpdateTableStatus(ctx, tx, tableID, models.TableBilling); err != nil {
		return apperrors.Internal("failed to move table to billing", err)
	}
	return nil
}

// UnmarkBilling reverts a table and session to their pre-billing state
// when the invoice is cancelled.
func (s *Service) UnmarkBilling(ctx context.Context, tx pgx.Tx, tableID int) error {
	session, err := s.repo.ActiveSession(ctx, tx, tableID)
	if err != nil {
		return apperrors.Internal("failed to load session", err)
	}
	if session == nil {
		return nil
	}
	if err := s.repo.SetSessionStatus(ctx, tx, session.ID, models.SessionActive); err != nil {
		return apperrors.Internal("failed to reactivate session", err)
	}
	if err := s.repo.UpdateTableStatus(ctx, tx, tableID, models.TableOccupied); err != nil {
		return apperrors.Internal("failed to reoccupy table", err)
	}
	return nil
}

func (s *Service) publishTableUpdate(ctx context.Context, t *models.Table) {
	s.publisher.PublishEvent(ctx, models.Event{
		Type:        models.EventTableUpdated,
		TableNumber: t.Number,
		TableStatus: string(t.Status),
	})
}
