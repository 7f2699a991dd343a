package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/item"
	"github.com/kasuganosora/lootgrid/game/lootbag"
	"go.uber.org/zap"
)

// LootBagHandler exposes the loot bags lying in the world.
type LootBagHandler struct {
	bags    *lootbag.Manager
	holders *holder.Manager
	logger  *zap.Logger
}

// NewLootBagHandler creates a LootBagHandler.
func NewLootBagHandler(bags *lootbag.Manager, holders *holder.Manager, logger *zap.Logger) *LootBagHandler {
	return &LootBagHandler{bags: bags, holders: holders, logger: logger}
}

// List handles GET /api/lootbags?map=.
func (h *LootBagHandler) List(c *gin.Context) {
	mapID, err := strconv.Atoi(c.Query("map"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map id"})
		return
	}
	var views []lootbag.View
	h.holders.Exclusive(func() {
		bags := h.bags.List(mapID)
		views = make([]lootbag.View, len(bags))
		for i, b := range bags {
			views[i] = b.View()
		}
	})
	c.JSON(http.StatusOK, gin.H{"bags": views, "count": len(views)})
}

// Get handles GET /api/lootbags/:id.
func (h *LootBagHandler) Get(c *gin.Context) {
	bag, err := h.bags.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var v lootbag.View
	h.holders.Exclusive(func() { v = bag.View() })
	c.JSON(http.StatusOK, gin.H{"bag": v})
}

// Take handles POST /api/lootbags/:id/take, moving one bag slot into an
// owner's inventory.
func (h *LootBagHandler) Take(c *gin.Context) {
	bag, err := h.bags.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var req struct {
		Slot  int   `json:"slot"`
		Owner int64 `json:"owner" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var done bool
	var v lootbag.View
	err = h.holders.Do(req.Owner, func(inv *item.Inventory) error {
		done = bag.Inventory.MoveToInventory(req.Slot, inv)
		v = bag.View()
		return nil
	})
	if errors.Is(err, holder.ErrNotOpen) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": done, "bag": v})
}

// Recent handles GET /api/maps/:map/drops?n=.
func (h *LootBagHandler) Recent(c *gin.Context) {
	mapID, err := strconv.Atoi(c.Param("map"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map id"})
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", "20"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid n"})
		return
	}
	drops, err := h.bags.Recent(c.Request.Context(), mapID, n)
	if err != nil {
		h.logger.Warn("recent drops read failed", zap.Int("map_id", mapID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if drops == nil {
		drops = []lootbag.Drop{}
	}
	c.JSON(http.StatusOK, gin.H{"drops": drops})
}
