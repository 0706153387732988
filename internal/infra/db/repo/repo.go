package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/events"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
)

// ErrDuplicateWebsite surfaces the unique constraint on
// hatch.websites.submission_id, the guard against two generation runs racing
// for one submission.
var ErrDuplicateWebsite = errors.New("website already exists for submission")

type SubmissionRepo struct {
	tx pgx.Tx
}

func NewSubmissionRepo(tx pgx.Tx) *SubmissionRepo {
	return &SubmissionRepo{tx: tx}
}

func (r *SubmissionRepo) Insert(ctx context.Context, sub db.Submission) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO hatch.submissions(id, status, fields, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.Status, sub.Fields, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting submission, %v", err)
	}
	return nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*db.Submission, error) {
	var sub db.Submission
	err := r.tx.QueryRow(ctx,
		`SELECT id, status, fields, staged_username, staged_password, created_at, updated_at
		 FROM hatch.submissions WHERE id = $1`, id).
		Scan(&sub.ID, &sub.Status, &sub.Fields, &sub.StagedUsername, &sub.StagedPassword,
			&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status consts.SubmissionStatus) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE hatch.submissions SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err updating submission status, %v", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// StageCredentials parks generated credentials on the submission so a retry
// after a partial run reuses them instead of rotating again.
func (r *SubmissionRepo) StageCredentials(ctx context.Context, id uuid.UUID, username, password string) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.submissions SET staged_username = $1, staged_password = $2, updated_at = $3 WHERE id = $4`,
		username, password, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err staging credentials, %v", err)
	}
	return nil
}

func (r *SubmissionRepo) ClearStagedCredentials(ctx context.Context, id uuid.UUID) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.submissions SET staged_username = NULL, staged_password = NULL, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("err clearing staged credentials, %v", err)
	}
	return nil
}

func (r *SubmissionRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.tx.Query(ctx, `SELECT status, count(*) FROM hatch.submissions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

const websiteColumns = `id, submission_id, user_id, status, payment_status,
	color_primary, color_secondary, color_accent, preview_url, publish_approved,
	approved_by, approved_at, publish_requested_at, deployment_url,
	deployment_provider, deployed_at, payment_session_id, amount_cents, paid_at,
	created_at, updated_at`

type WebsiteRepo struct {
	tx pgx.Tx
}

func NewWebsiteRepo(tx pgx.Tx) *WebsiteRepo {
	return &WebsiteRepo{tx: tx}
}

func scanWebsite(row pgx.Row) (*db.Website, error) {
	var w db.Website
	err := row.Scan(&w.ID, &w.SubmissionID, &w.UserID, &w.Status, &w.PaymentStatus,
		&w.ColorPrimary, &w.ColorSecondary, &w.ColorAccent, &w.PreviewURL, &w.PublishApproved,
		&w.ApprovedBy, &w.ApprovedAt, &w.PublishRequestedAt, &w.DeploymentURL,
		&w.DeploymentProvider, &w.DeployedAt, &w.PaymentSessionID, &w.AmountCents, &w.PaidAt,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WebsiteRepo) Insert(ctx context.Context, w db.Website) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO hatch.websites(id, submission_id, user_id, status, payment_status,
			color_primary, color_secondary, color_accent, preview_url, publish_approved, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		w.ID, w.SubmissionID, w.UserID, w.Status, w.PaymentStatus,
		w.ColorPrimary, w.ColorSecondary, w.ColorAccent, w.PreviewURL, w.PublishApproved,
		w.CreatedAt, w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateWebsite
		}
		return fmt.Errorf("err inserting website, %v", err)
	}
	return nil
}

func (r *WebsiteRepo) GetByID(ctx context.Context, id uuid.UUID) (*db.Website, error) {
	return scanWebsite(r.tx.QueryRow(ctx,
		`SELECT `+websiteColumns+` FROM hatch.websites WHERE id = $1`, id))
}

func (r *WebsiteRepo) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*db.Website, error) {
	return scanWebsite(r.tx.QueryRow(ctx,
		`SELECT `+websiteColumns+` FROM hatch.websites WHERE submission_id = $1`, submissionID))
}

func (r *WebsiteRepo) GetByPaymentSession(ctx context.Context, sessionID string) (*db.Website, error) {
	return scanWebsite(r.tx.QueryRow(ctx,
		`SELECT `+websiteColumns+` FROM hatch.websites WHERE payment_session_id = $1`, sessionID))
}

func (r *WebsiteRepo) SetPendingApproval(ctx context.Context, id uuid.UUID, requestedAt time.Time) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET status = $1, publish_requested_at = $2, updated_at = $3 WHERE id = $4`,
		consts.WebsiteStatusPendingApproval, requestedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err parking website for approval, %v", err)
	}
	return nil
}

func (r *WebsiteRepo) Approve(ctx context.Context, id uuid.UUID, approver string, at time.Time) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET publish_approved = TRUE, status = $1, approved_by = $2, approved_at = $3, updated_at = $4
		 WHERE id = $5`,
		consts.WebsiteStatusReady, approver, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err approving website, %v", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WebsiteRepo) MarkPublished(ctx context.Context, id uuid.UUID, url, provider string, at time.Time) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET status = $1, deployment_url = $2, deployment_provider = $3, deployed_at = $4, updated_at = $5
		 WHERE id = $6`,
		consts.WebsiteStatusPublished, url, provider, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err marking website published, %v", err)
	}
	return nil
}

func (r *WebsiteRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string, amountCents int64) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET payment_session_id = $1, amount_cents = $2, updated_at = $3 WHERE id = $4`,
		sessionID, amountCents, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err storing payment session, %v", err)
	}
	return nil
}

// MarkPaid records the verified payment and grants publish approval in the
// same statement; payment success is itself sufficient approval.
func (r *WebsiteRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET payment_status = $1, paid_at = $2, publish_approved = TRUE,
			approved_by = COALESCE(approved_by, 'payment'), approved_at = COALESCE(approved_at, $2), updated_at = $3
		 WHERE id = $4`,
		consts.PaymentStatusPaid, paidAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err marking website paid, %v", err)
	}
	return nil
}

func (r *WebsiteRepo) MarkPaymentFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE hatch.websites SET payment_status = $1, updated_at = $2 WHERE id = $3`,
		consts.PaymentStatusFailed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err marking payment failed, %v", err)
	}
	return nil
}

// ListSummaries joins the business name out of the submission payload for the
// admin overview.
func (r *WebsiteRepo) ListSummaries(ctx context.Context) ([]db.WebsiteSummary, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT w.id, w.submission_id, COALESCE(s.fields->>'businessName', ''), w.status, w.payment_status,
			w.publish_approved, w.preview_url, w.deployment_url
		 FROM hatch.websites w JOIN hatch.submissions s ON s.id = w.submission_id
		 ORDER BY w.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []db.WebsiteSummary
	for rows.Next() {
		var s db.WebsiteSummary
		if err = rows.Scan(&s.ID, &s.SubmissionID, &s.BusinessName, &s.Status, &s.PaymentStatus,
			&s.PublishApproved, &s.PreviewURL, &s.DeploymentURL); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *WebsiteRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.tx.Query(ctx, `SELECT status, count(*) FROM hatch.websites GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *WebsiteRepo) CountPaid(ctx context.Context) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx,
		`SELECT count(*) FROM hatch.websites WHERE payment_status = $1`, consts.PaymentStatusPaid).
		Scan(&count)
	return count, err
}

type UserRepo struct {
	tx pgx.Tx
}

func NewUserRepo(tx pgx.Tx) *UserRepo {
	return &UserRepo{tx: tx}
}

// FindOrCreateUser upserts by email. The username is only written on create;
// an existing user keeps theirs.
func (r *UserRepo) FindOrCreateUser(ctx context.Context, email, username, passwordHash string) (*db.User, bool, error) {
	var user db.User
	err := r.tx.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at FROM hatch.users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("err finding user, %v", err)
	}

	user = db.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err = r.tx.Exec(ctx,
		`INSERT INTO hatch.users(id, email, username, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("err creating user, %v", err)
	}
	return &user, true, nil
}

func (r *UserRepo) RotatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE hatch.users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("err rotating password, %v", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.tx.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at FROM hatch.users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type EventRepo struct {
	tx pgx.Tx
}

var _ interfaces.EventRepo = (*EventRepo)(nil)

func NewEventRepo(tx pgx.Tx) *EventRepo {
	return &EventRepo{tx: tx}
}

func (e *EventRepo) InsertEvent(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("err marshalling event payload, %v", err)
	}
	outbox := db.Outbox{
		Event:     event.GetType(),
		Status:    int(consts.NotProcessed),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	_, err = e.tx.Exec(ctx, "INSERT INTO hatch.outbox (event, status, payload, created_at) VALUES ($1,$2,$3,$4)",
		outbox.Event, outbox.Status, outbox.Payload, outbox.CreatedAt)
	if err != nil {
		return fmt.Errorf("err inserting a new event, %v", err)
	}
	return nil
}
