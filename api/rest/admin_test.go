package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kasuganosora/lootgrid/game/item"
	"github.com/kasuganosora/lootgrid/model"
	"github.com/kasuganosora/lootgrid/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_Auth(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/admin/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/admin/metrics", nil, "X-Admin-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_Metrics(t *testing.T) {
	e := newEnv(t)
	e.open(t, "1", item.Location{})
	e.open(t, "2", item.Location{})

	w := e.do(http.MethodGet, "/api/admin/metrics", nil, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.JSONEq(t, "2", string(body["open_inventories"]))
	assert.JSONEq(t, "0", string(body["loot_bags"]))
}

func TestAdmin_Scheduler(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/admin/scheduler", nil, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []scheduler.TaskStats
	require.NoError(t, json.Unmarshal(decode(t, w)["tasks"], &tasks))
	assert.Empty(t, tasks)
}

func TestAdmin_SaveAndSweep(t *testing.T) {
	e := newEnv(t)
	e.open(t, "3", item.Location{MapID: 1})
	e.do(http.MethodPost, "/api/inventories/3/items", map[string]interface{}{"item_id": potion, "qty": 1})

	w := e.do(http.MethodPost, "/api/admin/save", nil, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "1", string(decode(t, w)["saved"]))

	var count int64
	e.db.Model(&model.Inventory{}).Where("owner_id = ?", 3).Count(&count)
	assert.Equal(t, int64(1), count)

	e.do(http.MethodDelete, "/api/inventories/3/slots/0?drop=true", nil)
	bag := e.bags.List(1)[0]
	e.do(http.MethodPost, "/api/lootbags/"+bag.ID+"/take", map[string]interface{}{"slot": 0, "owner": 3})

	w = e.do(http.MethodPost, "/api/admin/lootbags/sweep", nil, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "1", string(decode(t, w)["removed"]))
	assert.Equal(t, 0, e.bags.Count())
}

func TestAdmin_AuditTrail(t *testing.T) {
	e := newEnv(t)
	e.open(t, "4", item.Location{})
	e.do(http.MethodPost, "/api/inventories/4/rows", map[string]interface{}{"count": 1, "ignore_cost": true})
	e.audit.Stop(t.Context())

	w := e.do(http.MethodGet, "/api/admin/audit/4?limit=10", nil, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []model.AuditLog
	require.NoError(t, json.Unmarshal(decode(t, w)["entries"], &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "inventory.add_rows", logs[0].Action)

	w = e.do(http.MethodGet, "/api/admin/audit/4?limit=0", nil, "X-Admin-Key", adminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
