package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"joinsync/internal/metrics"
	"joinsync/internal/models"
	"joinsync/internal/util"
)

const (
	SkippedNotPending  = "Skipped (not pending)"
	unreachableNote    = "Error: User hasn't started chat with bot"
	maxAnnotationChars = 500
)

type RecordStore interface {
	FindAll(ctx context.Context) ([]models.JoinRequest, error)
	ConditionalUpdateStatus(ctx context.Context, telegramID string, expected, next models.Status) (*models.JoinRequest, error)
}

type Sheet interface {
	Rows(ctx context.Context) ([]*models.SheetRow, error)
	AppendRows(ctx context.Context, rows []models.SheetRow) error
	SaveRow(ctx context.Context, row *models.SheetRow) error
}

type Notifier interface {
	Send(ctx context.Context, recipientID, text string) error
}

// Summary counts what one pass did.
type Summary struct {
	Appended int
	Notified int
	Skipped  int
	Failed   int
}

// Reconciler runs sync passes between the record store and the review sheet.
type Reconciler struct {
	store    RecordStore
	sheet    Sheet
	notifier Notifier
	messages Messages
	log      *zap.SugaredLogger
	metrics  *metrics.Registry

	now func() time.Time
}

func New(store RecordStore, sheet Sheet, notifier Notifier, messages Messages, log *zap.SugaredLogger, m *metrics.Registry) *Reconciler {
	return &Reconciler{
		store:    store,
		sheet:    sheet,
		notifier: notifier,
		messages: messages,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Run performs one pass: new records are appended to the sheet, then
// every reviewer decision not yet processed is written back, notified
// and marked. Row failures are recorded in the row; anything else
// aborts the pass.
func (r *Reconciler) Run(ctx context.Context) (sum Summary, err error) {
	start := r.now()
	log := r.log.With("pass_id", uuid.NewString())
	defer func() { r.metrics.ObservePass(start, err) }()

	log.Infow("starting sync pass")

	rows, err := r.sheet.Rows(ctx)
	if err != nil {
		return sum, fmt.Errorf("load sheet rows: %w", err)
	}
	records, err := r.store.FindAll(ctx)
	if err != nil {
		return sum, fmt.Errorf("load join requests: %w", err)
	}
	log.Infow("loaded state", "records", len(records), "rows", len(rows))
	records = mirrorable(log, records)

	sum.Appended, err = r.pushNew(ctx, log, records, rows)
	if err != nil {
		return sum, err
	}

	pending := make([]*models.SheetRow, 0)
	for _, row := range rows {
		if row.AwaitingSync() {
			pending = append(pending, row)
		}
	}
	if len(pending) == 0 {
		log.Infow("no unprocessed status changes in sheet")
	}

	for _, row := range pending {
		outcome, err := r.processRow(ctx, log, row)
		if err != nil {
			return sum, err
		}
		r.metrics.RowsProcessed.WithLabelValues(outcome).Inc()
		switch outcome {
		case metrics.OutcomeNotified:
			sum.Notified++
		case metrics.OutcomeSkipped:
			sum.Skipped++
		case metrics.OutcomeFailed:
			sum.Failed++
		}
	}

	log.Infow("sync pass finished",
		"appended", sum.Appended,
		"notified", sum.Notified,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"took", time.Since(start).Truncate(time.Millisecond).String(),
	)
	return sum, nil
}

// pushNew appends records missing from the sheet in a single batch.
func (r *Reconciler) pushNew(ctx context.Context, log *zap.SugaredLogger, records []models.JoinRequest, rows []*models.SheetRow) (int, error) {
	inSheet := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		inSheet[row.ID()] = struct{}{}
	}

	var fresh []models.SheetRow
	for _, rec := range records {
		if _, ok := inSheet[rec.TelegramID]; ok {
			continue
		}
		fresh = append(fresh, projectRow(rec))
	}
	if len(fresh) == 0 {
		log.Infow("no new join requests to push to sheet")
		return 0, nil
	}

	if err := r.sheet.AppendRows(ctx, fresh); err != nil {
		return 0, fmt.Errorf("append %d rows: %w", len(fresh), err)
	}
	r.metrics.RowsAppended.Add(float64(len(fresh)))
	log.Infow("pushed new join requests to sheet", "count", len(fresh))
	return len(fresh), nil
}

// mirrorable drops records the sheet cannot represent. Each one is
// logged and the pass goes on without it.
func mirrorable(log *zap.SugaredLogger, records []models.JoinRequest) []models.JoinRequest {
	out := make([]models.JoinRequest, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Warnw("skipping invalid join request", "telegram_id", rec.TelegramID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func projectRow(rec models.JoinRequest) models.SheetRow {
	return models.SheetRow{
		TelegramID:  rec.TelegramID,
		Username:    rec.Username,
		XLink:       rec.XLink,
		Status:      string(rec.Status),
		SubmittedAt: util.FormatISO(rec.SubmittedAt),
	}
}

// processRow reconciles one decided row. The returned error is set only
// when the row could not even be marked, which aborts the pass.
func (r *Reconciler) processRow(ctx context.Context, log *zap.SugaredLogger, row *models.SheetRow) (string, error) {
	id := row.ID()
	username := strings.TrimSpace(row.Username)
	if username == "" {
		username = id
	}
	status := models.NormalizeStatus(row.Status)
	log = log.With("telegram_id", id, "username", username, "row", row.Number, "status", status)

	outcome, err := r.applyDecision(ctx, log, row, id, username, status)
	if err == nil {
		return outcome, nil
	}

	log.Errorw("failed to process sheet update", "error", err)
	if err := row.Set(models.ColProcessed, annotate(err)); err != nil {
		return "", err
	}
	if err := r.sheet.SaveRow(ctx, row); err != nil {
		return "", fmt.Errorf("mark row %d for %s: %w", row.Number, id, err)
	}
	return metrics.OutcomeFailed, nil
}

// applyDecision only ever changes the processed cell of row.
func (r *Reconciler) applyDecision(ctx context.Context, log *zap.SugaredLogger, row *models.SheetRow, id, username string, status models.Status) (string, error) {
	updated, err := r.store.ConditionalUpdateStatus(ctx, id, models.StatusPending, status)
	if err != nil {
		return "", fmt.Errorf("update join request: %w", err)
	}
	if updated == nil {
		// unknown ids and already decided requests are treated alike
		log.Infow("join request not pending or not found, skipping")
		if err := row.Set(models.ColProcessed, SkippedNotPending); err != nil {
			return "", err
		}
		if err := r.sheet.SaveRow(ctx, row); err != nil {
			return "", fmt.Errorf("save row: %w", err)
		}
		return metrics.OutcomeSkipped, nil
	}

	if err := r.notifier.Send(ctx, id, r.messages.Text(status, username)); err != nil {
		if errors.Is(err, models.ErrRecipientUnreachable) {
			log.Warnw("requester has not started a chat with the bot", "error", err)
		}
		return "", fmt.Errorf("notify: %w", err)
	}
	log.Infow("sent decision notification")

	if err := row.Set(models.ColProcessed, util.FormatISO(r.now())); err != nil {
		return "", err
	}
	if err := r.sheet.SaveRow(ctx, row); err != nil {
		return "", fmt.Errorf("save row: %w", err)
	}
	return metrics.OutcomeNotified, nil
}

// annotate renders a row failure for the processed column.
func annotate(err error) string {
	if errors.Is(err, models.ErrRecipientUnreachable) {
		return unreachableNote
	}
	note := "Error: " + err.Error()
	if r := []rune(note); len(r) > maxAnnotationChars {
		note = string(r[:maxAnnotationChars])
	}
	return note
}
