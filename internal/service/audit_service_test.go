package service

import (
	"context"
	"testing"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/memory"
	"github.com/phrazzld/teamboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_RecordsBoardActions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	auditStore := memory.NewAuditStore()
	env.emitter.RegisterHandler(events.NewAuditHandler(auditStore, nil))

	svc, err := NewAuditService(auditStore, nil)
	require.NoError(t, err)

	_, err = env.board.MoveTask(ctx, env.session(t, developer3), "3", domain.StatusInProgress, "")
	require.NoError(t, err)

	admin := env.session(t, adminID)
	entries, err := svc.List(ctx, admin, store.AuditFilter{EntityType: domain.EntityTask, EntityID: "EMP003"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionMoveTask, entries[0].Action)
	assert.Equal(t, "3", entries[0].PerformedBy)

	entries, err = svc.List(ctx, admin, store.AuditFilter{PerformedBy: "2"})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.List(ctx, env.session(t, managerID), store.AuditFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
}
