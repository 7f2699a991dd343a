package audit

import (
	"context"
	"testing"

	"github.com/kasuganosora/lootgrid/model"
	"github.com/kasuganosora/lootgrid/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(Entry{
		TraceID: "trace-123",
		OwnerID: 7,
		Action:  ActionDrop,
		Detail:  map[string]int{"slot": 3, "qty": 5},
		MapID:   2,
	})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, int64(7), logs[0].OwnerID)
	assert.Equal(t, ActionDrop, logs[0].Action)
	assert.Equal(t, 2, logs[0].MapID)
	assert.JSONEq(t, `{"slot":3,"qty":5}`, string(logs[0].Detail))
}

func TestLog_BatchOverflowIsFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	for i := 0; i < 250; i++ {
		svc.Log(Entry{OwnerID: 1, Action: ActionAddRows})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestLog_NilDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(Entry{OwnerID: 4, Action: ActionTransfer, Error: "target not open"})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	db.Find(&logs)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Detail)
	assert.Equal(t, "target not open", logs[0].Error)
}

func TestRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	for i := 0; i < 5; i++ {
		svc.Log(Entry{OwnerID: 9, Action: ActionDrop, Detail: map[string]int{"n": i}})
	}
	svc.Log(Entry{OwnerID: 10, Action: ActionDrop})
	svc.Stop(context.Background())

	logs, err := svc.Recent(context.Background(), 9, 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.JSONEq(t, `{"n":4}`, string(logs[0].Detail))
	for _, l := range logs {
		assert.Equal(t, int64(9), l.OwnerID)
	}
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	for i := 0; i < queueSize+10; i++ {
		svc.Log(Entry{Action: "flood"})
	}
	svc.Stop(context.Background())
}
