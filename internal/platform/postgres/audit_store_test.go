package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	entry, err := domain.NewAuditEntry(domain.ActionMoveTask, domain.EntityTask, "12", "3")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_log")).
		WithArgs(entry.ID, "MOVE_TASK", "TASK", "12", "3", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresAuditStore(db, nil).Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_List(t *testing.T) {
	columns := []string{"id", "action", "entity_type", "entity_id", "performed_by", "created_at"}

	tests := []struct {
		name      string
		filter    store.AuditFilter
		wantQuery string
		wantArgs  []driver.Value
	}{
		{
			name:      "no filter uses default limit",
			wantQuery: "FROM audit_log ORDER BY created_at DESC LIMIT $1",
			wantArgs:  []driver.Value{defaultAuditLimit},
		},
		{
			name:      "entity filter",
			filter:    store.AuditFilter{EntityType: "TASK", EntityID: "12", Limit: 5},
			wantQuery: "WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC LIMIT $3",
			wantArgs:  []driver.Value{"TASK", "12", 5},
		},
		{
			name:      "actor filter",
			filter:    store.AuditFilter{PerformedBy: "3"},
			wantQuery: "WHERE performed_by = $1 ORDER BY created_at DESC LIMIT $2",
			wantArgs:  []driver.Value{"3", defaultAuditLimit},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(regexp.QuoteMeta(tc.wantQuery)).
				WithArgs(tc.wantArgs...).
				WillReturnRows(sqlmock.NewRows(columns).
					AddRow(uuid.New().String(), "CREATE_TASK", "TASK", "12", "2", time.Now()))

			entries, err := NewPostgresAuditStore(db, nil).List(context.Background(), tc.filter)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, domain.ActionCreateTask, entries[0].Action)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
