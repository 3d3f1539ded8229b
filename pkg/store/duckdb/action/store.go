package action

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/store"
	"github.com/de-tools/tenant-optimizer/pkg/store/duckdb"
)

// Store persists remediation actions. Every read is scoped by tenant id; no
// query may cross tenants.
type Store interface {
	Create(ctx context.Context, rec *store.ActionRecord) error
	Get(ctx context.Context, tenantID, id string) (*store.ActionRecord, error)
	// FindByResource returns the most recent action for the resource and kind,
	// regardless of status, or sql.ErrNoRows-wrapped not-found.
	FindByResource(ctx context.Context, tenantID, resourceID, kind string) (*store.ActionRecord, error)
	List(ctx context.Context, tenantID string, statuses []string) ([]*store.ActionRecord, error)
	// Transition is an optimistic check-and-set: the row moves from `from` to
	// `to` only if its status still equals `from`. It reports whether the
	// update won the race.
	Transition(ctx context.Context, tenantID, id, from, to string, update Update) (bool, error)
}

// Update carries the optional columns written alongside a status transition.
type Update struct {
	ApprovedBy *string
	ApprovedAt *time.Time
	Detail     *string
}

var ErrNotFound = errors.New("action record not found")

type actionStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &actionStore{db: db}, nil
}

const actionColumns = `id, tenant_id, subscription_id, resource_id, resource_name, resource_type,
		kind, upgrade_type, risk, status, analysis, recommendation, estimated_savings,
		approved_by, approved_at, detail, created_at, updated_at`

func (s *actionStore) Create(ctx context.Context, rec *store.ActionRecord) error {
	query := `
		INSERT INTO actions (
			id, tenant_id, subscription_id, resource_id, resource_name, resource_type,
			kind, upgrade_type, risk, status, analysis, recommendation, estimated_savings,
			approved_by, approved_at, detail, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = rec.CreatedAt

	var approvedAt any
	if rec.ApprovedAt != nil {
		approvedAt = *rec.ApprovedAt
	}

	tx := duckdb.GetTransaction(ctx)
	var err error
	args := []any{
		rec.ID, rec.TenantID, rec.SubscriptionID, rec.ResourceID, rec.ResourceName, rec.ResourceType,
		rec.Kind, rec.UpgradeType, rec.Risk, rec.Status, rec.Analysis, rec.Recommendation, rec.EstimatedSavings,
		rec.ApprovedBy, approvedAt, rec.Detail, rec.CreatedAt, rec.UpdatedAt,
	}
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func (s *actionStore) Get(ctx context.Context, tenantID, id string) (*store.ActionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM actions WHERE tenant_id = ? AND id = ?`, actionColumns)
	row := s.db.QueryRowContext(ctx, query, tenantID, id)
	return scanAction(row)
}

func (s *actionStore) FindByResource(ctx context.Context, tenantID, resourceID, kind string) (*store.ActionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM actions
		WHERE tenant_id = ? AND resource_id = ? AND kind = ?
		ORDER BY created_at DESC
		LIMIT 1`, actionColumns)
	row := s.db.QueryRowContext(ctx, query, tenantID, resourceID, kind)
	return scanAction(row)
}

func (s *actionStore) List(ctx context.Context, tenantID string, statuses []string) ([]*store.ActionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM actions WHERE tenant_id = ?`, actionColumns)
	args := []any{tenantID}
	if len(statuses) > 0 {
		query += ` AND status IN (`
		for i, st := range statuses {
			if i > 0 {
				query += `, `
			}
			query += `?`
			args = append(args, st)
		}
		query += `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	records := make([]*store.ActionRecord, 0)
	for rows.Next() {
		rec, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *actionStore) Transition(ctx context.Context, tenantID, id, from, to string, update Update) (bool, error) {
	query := `UPDATE actions SET status = ?, updated_at = ?`
	args := []any{to, time.Now().UTC()}

	if update.ApprovedBy != nil {
		query += `, approved_by = ?`
		args = append(args, *update.ApprovedBy)
	}
	if update.ApprovedAt != nil {
		query += `, approved_at = ?`
		args = append(args, *update.ApprovedAt)
	}
	if update.Detail != nil {
		query += `, detail = ?`
		args = append(args, *update.Detail)
	}

	query += ` WHERE tenant_id = ? AND id = ? AND status = ?`
	args = append(args, tenantID, id, from)

	var (
		res sql.Result
		err error
	)
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		res, err = tx.ExecContext(ctx, query, args...)
	} else {
		res, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return false, fmt.Errorf("transition action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition action: %w", err)
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*store.ActionRecord, error) {
	var (
		rec        store.ActionRecord
		approvedAt sql.NullTime
	)
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.SubscriptionID, &rec.ResourceID, &rec.ResourceName, &rec.ResourceType,
		&rec.Kind, &rec.UpgradeType, &rec.Risk, &rec.Status, &rec.Analysis, &rec.Recommendation, &rec.EstimatedSavings,
		&rec.ApprovedBy, &approvedAt, &rec.Detail, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan action: %w", err)
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		rec.ApprovedAt = &t
	}
	return &rec, nil
}
