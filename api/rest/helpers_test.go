package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/api/rest"
	"github.com/kasuganosora/lootgrid/audit"
	"github.com/kasuganosora/lootgrid/config"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/item"
	"github.com/kasuganosora/lootgrid/game/lootbag"
	"github.com/kasuganosora/lootgrid/scheduler"
	"github.com/kasuganosora/lootgrid/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	potion  item.ItemID = 1
	sword   item.ItemID = 2
	crystal item.ItemID = 3
)

const adminKey = "test-admin-key"

type env struct {
	r       *gin.Engine
	db      *gorm.DB
	holders *holder.Manager
	bags    *lootbag.Manager
	audit   *audit.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	catalog := item.MapCatalog{
		potion:  {ID: potion, Name: "Potion", Type: "consumable", MaxStack: 10},
		sword:   {ID: sword, Name: "Sword", Type: "weapon", MaxStack: 1},
		crystal: {ID: crystal, Name: "Crystal", Type: "material", MaxStack: 50},
	}
	bags := lootbag.NewManager(lootbag.Config{SlotsPerRow: 5, Rows: 1, SpawnOffset: 200}, catalog, c, logger)
	holders := holder.NewManager(holder.Config{
		Inventory: item.Config{
			SlotsPerRow:   3,
			InitialRows:   1,
			MaxRows:       3,
			UpgradeItem:   crystal,
			UpgradeAmount: 2,
			MergeDistance: 500,
		},
		SnapshotTTL: time.Minute,
	}, catalog, item.NewStore(db, logger), bags, c, ps, logger)

	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	r := rest.NewRouter(rest.Deps{
		Holders:   holders,
		LootBags:  bags,
		Scheduler: sched,
		Audit:     auditSvc,
		PubSub:    ps,
		Server:    config.ServerConfig{AdminKey: adminKey},
		Logger:    logger,
	})
	return &env{r: r, db: db, holders: holders, bags: bags, audit: auditSvc}
}

func (e *env) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) doRaw(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) open(t *testing.T, owner string, loc item.Location) {
	t.Helper()
	w := e.do(http.MethodPost, "/api/inventories/"+owner+"/open", loc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func inventoryOf(t *testing.T, w *httptest.ResponseRecorder) holder.Snapshot {
	t.Helper()
	var snap holder.Snapshot
	require.NoError(t, json.Unmarshal(decode(t, w)["inventory"], &snap))
	return snap
}

func okOf(t *testing.T, w *httptest.ResponseRecorder) bool {
	t.Helper()
	var ok bool
	require.NoError(t, json.Unmarshal(decode(t, w)["ok"], &ok))
	return ok
}
