/**
 * @description
 * Scheduled job implementations for the reconciliation-service.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/editlance/reconciliation-service/internal/config"
	"github.com/editlance/reconciliation-service/internal/domain"
)

// Lease names for the two sweeps.
const (
	overdueSweepLock = "overdue_quotations"
	decaySweepLock   = "warning_decay"
)

// Repository defines database operations needed by the jobs.
type Repository interface {
	FindOverdueQuotations(ctx context.Context, threshold time.Time) ([]domain.Quotation, error)
	MarkQuotationExpired(ctx context.Context, quotationID uuid.UUID) (bool, error)
	FindEditorByUserID(ctx context.Context, userID uuid.UUID) (*domain.EditorProfile, error)
	IncrementEditorWarning(ctx context.Context, userID uuid.UUID, warnedAt time.Time) (int, error)
	SuspendEditor(ctx context.Context, userID uuid.UUID, until time.Time) error
	FindEditorsForWarningDecay(ctx context.Context, cutoff time.Time) ([]domain.EditorProfile, error)
	ResetEditorWarnings(ctx context.Context, userID uuid.UUID) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// WalletClient defines the interface for communicating with the wallet service.
type WalletClient interface {
	RefundExpiredQuotation(ctx context.Context, userID, quotationID uuid.UUID, amount int64) error
}

// MailClient defines the interface for sending transactional emails.
type MailClient interface {
	SendWarningEmail(ctx context.Context, toAddress, quotationTitle string) error
	SendSuspensionEmail(ctx context.Context, toAddress string, suspendedUntil time.Time) error
}

// Notifier emits in-app notification events.
type Notifier interface {
	Emit(ctx context.Context, event domain.NotificationEvent) error
}

// JobLock guards a named sweep against overlapping invocations.
type JobLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, name, token string) error
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo     Repository
	wallet   WalletClient
	mail     MailClient
	notifier Notifier
	lock     JobLock
	logger   *slog.Logger
	config   config.Config
	now      func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo Repository, wallet WalletClient, mail MailClient, notifier Notifier, lock JobLock, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		repo:     repo,
		wallet:   wallet,
		mail:     mail,
		notifier: notifier,
		lock:     lock,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
	}
}

func (j *Jobs) lockTTL() time.Duration {
	return time.Duration(j.config.SweepLockTTLSeconds) * time.Second
}

// ProcessOverdueQuotations is the hourly sweep that expires quotations left
// in 'accepted' past their due date plus the grace window, refunds the
// client's advance, and disciplines the assigned editor.
func (j *Jobs) ProcessOverdueQuotations() {
	j.logger.Info("starting overdue quotations job")
	ctx := context.Background()

	token, acquired, err := j.lock.Acquire(ctx, overdueSweepLock, j.lockTTL())
	if err != nil {
		j.logger.Error("failed to acquire sweep lease", "job", overdueSweepLock, "error", err)
		return
	}
	if !acquired {
		j.logger.Warn("previous overdue sweep still holds the lease, skipping run")
		return
	}
	defer func() {
		if err := j.lock.Release(ctx, overdueSweepLock, token); err != nil {
			j.logger.Error("failed to release sweep lease", "job", overdueSweepLock, "error", err)
		}
	}()

	threshold := j.now().Add(-time.Duration(j.config.OverdueGraceHours) * time.Hour)
	quotations, err := j.repo.FindOverdueQuotations(ctx, threshold)
	if err != nil {
		j.logger.Error("failed to query overdue quotations", "error", err)
		return
	}

	if len(quotations) == 0 {
		j.logger.Info("no overdue quotations to process")
		return
	}

	j.logger.Info("found overdue quotations", "count", len(quotations))

	// Quotations are independent of each other; a slow refund or email call
	// for one must not hold up the rest of the batch.
	var failed atomic.Int64
	g := new(errgroup.Group)
	for _, quotation := range quotations {
		quotation := quotation
		g.Go(func() error {
			if err := j.processOverdueQuotation(ctx, quotation); err != nil {
				j.logger.Error("failed to process overdue quotation", "quotation_id", quotation.ID, "error", err)
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	j.logger.Info("finished overdue quotations job", "count", len(quotations), "failed", failed.Load())
}

// processOverdueQuotation applies the compensation sequence to one
// quotation. The guarded status flip runs first and gates everything else:
// if the quotation already left 'accepted', a previous sweep (or a
// concurrent writer) owns the compensation and nothing is re-applied.
func (j *Jobs) processOverdueQuotation(ctx context.Context, quotation domain.Quotation) error {
	expired, err := j.repo.MarkQuotationExpired(ctx, quotation.ID)
	if err != nil {
		return fmt.Errorf("failed to expire quotation: %w", err)
	}
	if !expired {
		j.logger.Info("quotation no longer accepted, skipping compensation", "quotation_id", quotation.ID)
		return nil
	}

	var errs []error
	if err := j.refundAdvance(ctx, quotation); err != nil {
		errs = append(errs, err)
	}
	if err := j.disciplineEditor(ctx, quotation); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// refundAdvance credits the client's wallet with the advance held against
// the quotation. Quotations without a positive advance are skipped with a
// warning rather than treated as failures.
func (j *Jobs) refundAdvance(ctx context.Context, quotation domain.Quotation) error {
	if quotation.AdvanceAmount <= 0 {
		j.logger.Warn("quotation has no refundable advance, skipping refund",
			"quotation_id", quotation.ID, "amount", quotation.AdvanceAmount)
		return nil
	}

	if err := j.wallet.RefundExpiredQuotation(ctx, quotation.UserID, quotation.ID, quotation.AdvanceAmount); err != nil {
		return fmt.Errorf("failed to refund advance: %w", err)
	}
	j.logger.Info("refunded advance to client wallet",
		"quotation_id", quotation.ID, "user_id", quotation.UserID, "amount", quotation.AdvanceAmount)

	j.emitEvent(ctx, domain.NotificationEvent{
		Type:        domain.EventPaymentRefunded,
		RecipientID: quotation.UserID,
		QuotationID: quotation.ID,
		Message:     fmt.Sprintf("Your advance for %q was refunded to your wallet because the quotation expired.", quotation.Title),
	})
	return nil
}

// disciplineEditor records a warning against the assigned editor and
// escalates to a timed suspension once the warning count crosses the
// threshold. The counter increment is atomic at the database, so two
// overdue quotations for the same editor in one sweep each observe their
// own post-increment count.
func (j *Jobs) disciplineEditor(ctx context.Context, quotation domain.Quotation) error {
	editor, err := j.repo.FindEditorByUserID(ctx, quotation.EditorID)
	if err != nil {
		return fmt.Errorf("failed to look up editor: %w", err)
	}
	if editor == nil {
		j.logger.Warn("no editor profile for quotation, skipping discipline",
			"quotation_id", quotation.ID, "editor_id", quotation.EditorID)
		return nil
	}

	now := j.now()
	warnings, err := j.repo.IncrementEditorWarning(ctx, editor.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to record warning: %w", err)
	}

	if warnings >= j.config.SuspensionThreshold {
		until := now.Add(time.Duration(j.config.SuspensionDays) * 24 * time.Hour)
		if err := j.repo.SuspendEditor(ctx, editor.UserID, until); err != nil {
			return fmt.Errorf("failed to suspend editor: %w", err)
		}
		j.logger.Info("suspended editor",
			"editor_id", editor.UserID, "quotation_id", quotation.ID, "suspended_until", until)

		j.emitEvent(ctx, domain.NotificationEvent{
			Type:        domain.EventEditorSuspended,
			RecipientID: editor.UserID,
			QuotationID: quotation.ID,
			Message:     fmt.Sprintf("Your account has been suspended until %s for repeatedly missing due dates.", until.UTC().Format(time.RFC1123)),
		})
		j.sendEditorEmail(ctx, editor.UserID, func(email string) error {
			return j.mail.SendSuspensionEmail(ctx, email, until)
		})
		return nil
	}

	j.logger.Info("issued warning to editor",
		"editor_id", editor.UserID, "quotation_id", quotation.ID, "warning_count", warnings)

	j.emitEvent(ctx, domain.NotificationEvent{
		Type:        domain.EventEditorWarning,
		RecipientID: editor.UserID,
		QuotationID: quotation.ID,
		Message:     fmt.Sprintf("You received a warning because %q passed its due date without delivery.", quotation.Title),
	})
	j.sendEditorEmail(ctx, editor.UserID, func(email string) error {
		return j.mail.SendWarningEmail(ctx, email, quotation.Title)
	})
	return nil
}

// emitEvent publishes a notification event, stamping id and time. Fan-out
// failures are logged and never abort compensation.
func (j *Jobs) emitEvent(ctx context.Context, event domain.NotificationEvent) {
	event.EventID = uuid.New()
	event.OccurredAt = j.now()
	if err := j.notifier.Emit(ctx, event); err != nil {
		j.logger.Error("failed to emit notification event",
			"type", event.Type, "recipient_id", event.RecipientID, "error", err)
	}
}

// sendEditorEmail resolves the editor's address and runs the given send.
// Editors without a resolvable email are skipped; send failures are logged.
func (j *Jobs) sendEditorEmail(ctx context.Context, editorID uuid.UUID, send func(email string) error) {
	user, err := j.repo.FindUserByID(ctx, editorID)
	if err != nil {
		j.logger.Error("failed to resolve editor email", "editor_id", editorID, "error", err)
		return
	}
	if user == nil || user.Email == "" {
		j.logger.Warn("editor has no email on file, skipping email", "editor_id", editorID)
		return
	}
	if err := send(user.Email); err != nil {
		j.logger.Error("failed to send editor email", "editor_id", editorID, "error", err)
	}
}

// ProcessWarningDecay is the daily sweep that forgives warnings for editors
// who have stayed clean for the decay window. Suspended editors are excluded
// by the query; their counters were already reset when the suspension was
// applied.
func (j *Jobs) ProcessWarningDecay() {
	j.logger.Info("starting warning decay job")
	ctx := context.Background()

	token, acquired, err := j.lock.Acquire(ctx, decaySweepLock, j.lockTTL())
	if err != nil {
		j.logger.Error("failed to acquire sweep lease", "job", decaySweepLock, "error", err)
		return
	}
	if !acquired {
		j.logger.Warn("previous warning decay sweep still holds the lease, skipping run")
		return
	}
	defer func() {
		if err := j.lock.Release(ctx, decaySweepLock, token); err != nil {
			j.logger.Error("failed to release sweep lease", "job", decaySweepLock, "error", err)
		}
	}()

	cutoff := j.now().AddDate(0, 0, -j.config.WarningDecayDays)
	editors, err := j.repo.FindEditorsForWarningDecay(ctx, cutoff)
	if err != nil {
		j.logger.Error("failed to query editors for warning decay", "error", err)
		return
	}

	if len(editors) == 0 {
		j.logger.Info("no editor warnings to decay")
		return
	}

	reset := 0
	for _, editor := range editors {
		if err := j.repo.ResetEditorWarnings(ctx, editor.UserID); err != nil {
			// Remaining editors are picked up by the next run.
			j.logger.Error("failed to reset editor warnings, aborting run", "editor_id", editor.UserID, "error", err)
			break
		}
		reset++
	}

	j.logger.Info("finished warning decay job", "count", len(editors), "reset", reset)
}
