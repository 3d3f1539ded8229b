package action

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/tenant-optimizer/pkg/models/store"
	"github.com/de-tools/tenant-optimizer/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := NewStore(db)
	require.NoError(t, err)
	return st, mock
}

func actionRows(rec *store.ActionRecord) *sqlmock.Rows {
	var approvedAt any
	if rec.ApprovedAt != nil {
		approvedAt = *rec.ApprovedAt
	}
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "subscription_id", "resource_id", "resource_name", "resource_type",
		"kind", "upgrade_type", "risk", "status", "analysis", "recommendation", "estimated_savings",
		"approved_by", "approved_at", "detail", "created_at", "updated_at",
	}).AddRow(
		rec.ID, rec.TenantID, rec.SubscriptionID, rec.ResourceID, rec.ResourceName, rec.ResourceType,
		rec.Kind, rec.UpgradeType, rec.Risk, rec.Status, rec.Analysis, rec.Recommendation, rec.EstimatedSavings,
		rec.ApprovedBy, approvedAt, rec.Detail, rec.CreatedAt, rec.UpdatedAt,
	)
}

func sampleRecord() *store.ActionRecord {
	return &store.ActionRecord{
		ID:             "action-1",
		TenantID:       "tenant-1",
		SubscriptionID: "s1",
		ResourceID:     "/subscriptions/s1/resourceGroups/rg/providers/Microsoft.Compute/disks/d1",
		ResourceName:   "d1",
		ResourceType:   "disk",
		Kind:           "delete",
		Risk:           "medium",
		Status:         "proposed",
		CreatedAt:      time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_NewStoreRequiresDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestStore_Create(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO actions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.Create(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	st, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectQuery("SELECT (.+) FROM actions WHERE tenant_id = \\? AND id = \\?").
		WithArgs("tenant-1", "action-1").
		WillReturnRows(actionRows(rec))

	got, err := st.Get(context.Background(), "tenant-1", "action-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Status, got.Status)
	assert.Nil(t, got.ApprovedAt)
}

func TestStore_Get_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM actions WHERE tenant_id = \\? AND id = \\?").
		WithArgs("tenant-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := st.Get(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindByResource_PicksLatest(t *testing.T) {
	st, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("tenant-1", rec.ResourceID, "delete").
		WillReturnRows(actionRows(rec))

	got, err := st.FindByResource(context.Background(), "tenant-1", rec.ResourceID, "delete")
	require.NoError(t, err)
	assert.Equal(t, "action-1", got.ID)
}

func TestStore_List_WithStatusFilter(t *testing.T) {
	st, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectQuery("AND status IN \\(\\?, \\?\\)").
		WithArgs("tenant-1", "proposed", "approved").
		WillReturnRows(actionRows(rec))

	records, err := st.List(context.Background(), "tenant-1", []string{"proposed", "approved"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "action-1", records[0].ID)
}

func TestStore_Transition_WinsRace(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE actions SET status = \\?, updated_at = \\? WHERE tenant_id = \\? AND id = \\? AND status = \\?").
		WithArgs("approved", sqlmock.AnyArg(), "tenant-1", "action-1", "proposed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := st.Transition(context.Background(), "tenant-1", "action-1", "proposed", "approved", Update{})
	require.NoError(t, err)
	assert.True(t, won)
}

func TestStore_Transition_LosesRace(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE actions SET status = \\?, updated_at = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := st.Transition(context.Background(), "tenant-1", "action-1", "proposed", "approved", Update{})
	require.NoError(t, err)
	assert.False(t, won)
}

func TestStore_Create_UsesAmbientTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO actions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	ctx := duckdb.WithTransaction(context.Background(), tx)
	require.NoError(t, st.Create(ctx, sampleRecord()))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Transition_WritesApprovalColumns(t *testing.T) {
	st, mock := newMockStore(t)

	approver := "alice@contoso.com"
	approvedAt := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	detail := "resource deleted"

	mock.ExpectExec("approved_by = \\?, approved_at = \\?, detail = \\?").
		WithArgs("succeeded", sqlmock.AnyArg(), approver, approvedAt, detail, "tenant-1", "action-1", "executing").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := st.Transition(context.Background(), "tenant-1", "action-1", "executing", "succeeded", Update{
		ApprovedBy: &approver,
		ApprovedAt: &approvedAt,
		Detail:     &detail,
	})
	require.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}
