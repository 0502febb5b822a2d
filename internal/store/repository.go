/**
 * @description
 * This file implements the data access layer for the reconciliation-service.
 * It contains all the SQL queries and logic for interacting with the database
 * for the scheduled sweeps.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/editlance/reconciliation-service/internal/domain"
)

// Repository handles database operations for the reconciliation sweeps.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FindOverdueQuotations fetches all quotations still 'accepted' whose due
// date passed before the given threshold.
func (r *Repository) FindOverdueQuotations(ctx context.Context, threshold time.Time) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	query := `
        SELECT id, user_id, editor_id, title, status, due_date,
               COALESCE(advance_amount, 0), is_payment_in_progress
        FROM quotations
        WHERE status = 'accepted'
          AND due_date < $1
    `
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q domain.Quotation
		err := rows.Scan(
			&q.ID, &q.UserID, &q.EditorID, &q.Title, &q.Status,
			&q.DueDate, &q.AdvanceAmount, &q.PaymentInProgress)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, q)
	}

	return quotations, rows.Err()
}

// MarkQuotationExpired transitions a quotation from 'accepted' to 'expired'.
// The status guard makes the transition one-way: it reports false when the
// quotation was already moved out of 'accepted' by an earlier sweep or by a
// concurrent writer, and callers use that as the gate for compensation.
func (r *Repository) MarkQuotationExpired(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	query := `
        UPDATE quotations
        SET status = 'expired',
            updated_at = NOW()
        WHERE id = $1
          AND status = 'accepted'
    `
	commandTag, err := r.db.Exec(ctx, query, quotationID)
	if err != nil {
		return false, err
	}
	return commandTag.RowsAffected() > 0, nil
}

// FindEditorByUserID looks up an editor profile. Returns (nil, nil) when no
// profile exists for the user.
func (r *Repository) FindEditorByUserID(ctx context.Context, userID uuid.UUID) (*domain.EditorProfile, error) {
	var editor domain.EditorProfile
	query := `
        SELECT user_id, warning_count, is_suspended, suspended_until, last_warning_date
        FROM editor_profiles
        WHERE user_id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&editor.UserID, &editor.WarningCount, &editor.IsSuspended,
		&editor.SuspendedUntil, &editor.LastWarningDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &editor, nil
}

// IncrementEditorWarning atomically bumps the warning counter and stamps the
// warning date, returning the post-increment count. The increment happens in
// the database so two overdue quotations for the same editor in one sweep
// cannot lose an update.
func (r *Repository) IncrementEditorWarning(ctx context.Context, userID uuid.UUID, warnedAt time.Time) (int, error) {
	var newCount int
	query := `
        UPDATE editor_profiles
        SET warning_count = warning_count + 1,
            last_warning_date = $2,
            updated_at = NOW()
        WHERE user_id = $1
        RETURNING warning_count
    `
	if err := r.db.QueryRow(ctx, query, userID, warnedAt).Scan(&newCount); err != nil {
		return 0, err
	}
	return newCount, nil
}

// SuspendEditor puts an editor on a timed suspension and clears the warning
// counter.
func (r *Repository) SuspendEditor(ctx context.Context, userID uuid.UUID, until time.Time) error {
	query := `
        UPDATE editor_profiles
        SET is_suspended = TRUE,
            suspended_until = $2,
            warning_count = 0,
            updated_at = NOW()
        WHERE user_id = $1
    `
	_, err := r.db.Exec(ctx, query, userID, until)
	return err
}

// FindEditorsForWarningDecay fetches unsuspended editors carrying warnings
// whose last warning predates the cutoff.
func (r *Repository) FindEditorsForWarningDecay(ctx context.Context, cutoff time.Time) ([]domain.EditorProfile, error) {
	var editors []domain.EditorProfile
	query := `
        SELECT user_id, warning_count, is_suspended, suspended_until, last_warning_date
        FROM editor_profiles
        WHERE is_suspended = FALSE
          AND warning_count > 0
          AND last_warning_date < $1
    `
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var editor domain.EditorProfile
		err := rows.Scan(
			&editor.UserID, &editor.WarningCount, &editor.IsSuspended,
			&editor.SuspendedUntil, &editor.LastWarningDate)
		if err != nil {
			return nil, err
		}
		editors = append(editors, editor)
	}

	return editors, rows.Err()
}

// ResetEditorWarnings zeroes the warning counter. The last warning date is
// left in place as an audit trail.
func (r *Repository) ResetEditorWarnings(ctx context.Context, userID uuid.UUID) error {
	query := `
        UPDATE editor_profiles
        SET warning_count = 0,
            updated_at = NOW()
        WHERE user_id = $1
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// FindUserByID resolves a user's account record, mainly for email fan-out.
// Returns (nil, nil) when the user does not exist.
func (r *Repository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
        SELECT id, COALESCE(username, ''), COALESCE(email, '')
        FROM users
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
