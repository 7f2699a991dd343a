package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/audit"
	"github.com/kasuganosora/lootgrid/game/holder"
	"github.com/kasuganosora/lootgrid/game/item"
	mw "github.com/kasuganosora/lootgrid/middleware"
	"go.uber.org/zap"
)

// InventoryHandler exposes owner inventories over REST.
type InventoryHandler struct {
	holders *holder.Manager
	audit   *audit.Service
	logger  *zap.Logger
}

// NewInventoryHandler creates an InventoryHandler. auditSvc may be nil.
func NewInventoryHandler(holders *holder.Manager, auditSvc *audit.Service, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{holders: holders, audit: auditSvc, logger: logger}
}

// Register mounts the inventory routes on g.
func (h *InventoryHandler) Register(g *gin.RouterGroup) {
	g.POST("/:owner/open", h.Open)
	g.DELETE("/:owner", h.Close)
	g.PUT("/:owner/position", h.Position)
	g.GET("/:owner", h.Get)
	g.GET("/:owner/quantity/:item", h.Quantity)
	g.GET("/:owner/find", h.Find)
	g.POST("/:owner/rows", h.AddRows)
	g.POST("/:owner/items", h.AddItem)
	g.POST("/:owner/quantity", h.ChangeQuantity)
	g.POST("/:owner/move", h.Move)
	g.POST("/:owner/split", h.Split)
	g.POST("/:owner/place", h.Place)
	g.DELETE("/:owner/slots/:slot", h.Remove)
	g.POST("/:owner/transfer", h.Transfer)
}

func ownerParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("owner"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
		return 0, false
	}
	return id, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, holder.ErrNotOpen):
		return http.StatusNotFound
	case errors.Is(err, item.ErrInvalidRowCount),
		errors.Is(err, item.ErrUnknownItem),
		errors.Is(err, item.ErrExceedsStackLimit):
		return http.StatusBadRequest
	case errors.Is(err, item.ErrCapacityExceeded),
		errors.Is(err, item.ErrInsufficientUpgradeCost),
		errors.Is(err, item.ErrOverflowUnresolved):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("inventory request failed", zap.String("trace_id", mw.GetTraceID(c)), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *InventoryHandler) record(c *gin.Context, ownerID int64, action string, detail interface{}, err error) {
	if h.audit == nil {
		return
	}
	e := audit.Entry{
		TraceID: mw.GetTraceID(c),
		OwnerID: ownerID,
		Action:  action,
		Detail:  detail,
	}
	if err != nil {
		e.Error = err.Error()
	}
	h.audit.Log(e)
}

func view(ownerID int64, inv *item.Inventory) holder.Snapshot {
	return holder.Snapshot{
		OwnerID:     ownerID,
		Rows:        inv.RowCount(),
		SlotsPerRow: inv.SlotsPerRow(),
		Slots:       inv.Slots(),
	}
}

// Open handles POST /api/inventories/:owner/open. The body is the owner's
// location and may be empty.
func (h *InventoryHandler) Open(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var loc item.Location
	if err := c.ShouldBindJSON(&loc); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.holders.Open(c.Request.Context(), ownerID, loc); err != nil {
		h.fail(c, err)
		return
	}
	snap, err := h.holders.Snapshot(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": snap})
}

// Close handles DELETE /api/inventories/:owner.
func (h *InventoryHandler) Close(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	if err := h.holders.Close(c.Request.Context(), ownerID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Position handles PUT /api/inventories/:owner/position.
func (h *InventoryHandler) Position(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var loc item.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.holders.Move(ownerID, loc); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Get handles GET /api/inventories/:owner.
func (h *InventoryHandler) Get(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	snap, err := h.holders.Snapshot(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": snap})
}

// Quantity handles GET /api/inventories/:owner/quantity/:item.
func (h *InventoryHandler) Quantity(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("item"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var qty, empty int
	err = h.holders.Do(ownerID, func(inv *item.Inventory) error {
		qty = inv.QuantityOf(item.ItemID(id))
		empty = inv.EmptySlotCount()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": id, "quantity": qty, "empty_slots": empty})
}

// Find handles GET /api/inventories/:owner/find?type=&from=&dir=.
// Without from the first matching slot is returned.
func (h *InventoryHandler) Find(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	itemType := c.Query("type")
	from, hasFrom := c.GetQuery("from")
	start, errStart := strconv.Atoi(from)
	dir, errDir := strconv.Atoi(c.DefaultQuery("dir", "1"))
	if itemType == "" || (hasFrom && errStart != nil) || errDir != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	var slot int
	var exists bool
	err := h.holders.Do(ownerID, func(inv *item.Inventory) error {
		exists = inv.TypeExists(itemType)
		if hasFrom {
			slot = inv.FindNextOfType(start, dir, itemType)
		} else {
			slot = inv.FindFirstOfType(itemType)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "exists": exists})
}

// AddRows handles POST /api/inventories/:owner/rows.
func (h *InventoryHandler) AddRows(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		Count      int  `json:"count" binding:"required"`
		IgnoreCost bool `json:"ignore_cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var added int
	var snap holder.Snapshot
	err := h.holders.Do(ownerID, func(inv *item.Inventory) error {
		var err error
		added, err = inv.AddRows(req.Count, req.IgnoreCost)
		snap = view(ownerID, inv)
		return err
	})
	if errors.Is(err, holder.ErrNotOpen) {
		h.fail(c, err)
		return
	}
	h.record(c, ownerID, audit.ActionAddRows, gin.H{"requested": req.Count, "added": added, "ignore_cost": req.IgnoreCost}, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "inventory": snap})
}

// AddItem handles POST /api/inventories/:owner/items.
func (h *InventoryHandler) AddItem(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemID        item.ItemID `json:"item_id" binding:"required"`
		Qty           int         `json:"qty" binding:"required"`
		DropIfNone    bool        `json:"drop_if_none"`
		DropIfPartial bool        `json:"drop_if_partial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var res item.AddResult
	var snap holder.Snapshot
	err := h.holders.Do(ownerID, func(inv *item.Inventory) error {
		res = inv.AddItem(item.Stack{Item: req.ItemID, Qty: req.Qty}, req.DropIfNone, req.DropIfPartial)
		snap = view(ownerID, inv)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "inventory": snap})
}

// ChangeQuantity handles POST /api/inventories/:owner/quantity.
func (h *InventoryHandler) ChangeQuantity(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemID item.ItemID `json:"item_id" binding:"required"`
		Delta  int         `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var leftover int
	var snap holder.Snapshot
	err := h.holders.Do(ownerID, func(inv *item.Inventory) error {
		var err error
		leftover, err = inv.ChangeQuantity(req.ItemID, req.Delta)
		snap = view(ownerID, inv)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leftover": leftover, "inventory": snap})
}

// slotOp runs a bool-returning slot operation and answers with its outcome.
func (h *InventoryHandler) slotOp(c *gin.Context, ownerID int64, op func(inv *item.Inventory) bool) (bool, bool) {
	var done bool
	var snap holder.Snapshot
	err := h.holders.Do(ownerID, func(inv *item.Inventory) error {
		done = op(inv)
		snap = view(ownerID, inv)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return false, false
	}
	c.JSON(http.StatusOK, gin.H{"ok": done, "inventory": snap})
	return done, true
}

// Move handles POST /api/inventories/:owner/move.
func (h *InventoryHandler) Move(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.slotOp(c, ownerID, func(inv *item.Inventory) bool { return inv.MoveItem(req.From, req.To) })
}

// Split handles POST /api/inventories/:owner/split.
func (h *InventoryHandler) Split(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		Slot int `json:"slot"`
		Qty  int `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.slotOp(c, ownerID, func(inv *item.Inventory) bool { return inv.SplitStack(req.Slot, req.Qty) })
}

// Place handles POST /api/inventories/:owner/place.
func (h *InventoryHandler) Place(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		Slot   int         `json:"slot"`
		ItemID item.ItemID `json:"item_id"`
		Qty    int         `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.slotOp(c, ownerID, func(inv *item.Inventory) bool {
		return inv.PlaceAt(item.Stack{Item: req.ItemID, Qty: req.Qty}, req.Slot)
	})
}

// Remove handles DELETE /api/inventories/:owner/slots/:slot?drop=true.
func (h *InventoryHandler) Remove(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}
	drop := c.Query("drop") == "true"
	var before item.Slot
	done, answered := h.slotOp(c, ownerID, func(inv *item.Inventory) bool {
		before = inv.ItemAt(slot)
		return inv.RemoveItem(slot, drop)
	})
	if answered && drop && !before.Empty() {
		var failure error
		if !done {
			failure = item.ErrOverflowUnresolved
		}
		h.record(c, ownerID, audit.ActionDrop, gin.H{"slot": slot, "item_id": before.Item, "qty": before.Qty}, failure)
	}
}

// Transfer handles POST /api/inventories/:owner/transfer.
func (h *InventoryHandler) Transfer(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	var req struct {
		Slot   int   `json:"slot"`
		Target int64 `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var done bool
	var moved item.Slot
	var snap holder.Snapshot
	err := h.holders.Pair(ownerID, req.Target, func(src, dst *item.Inventory) error {
		moved = src.ItemAt(req.Slot)
		done = src.MoveToInventory(req.Slot, dst)
		snap = view(ownerID, src)
		return nil
	})
	detail := gin.H{"slot": req.Slot, "target": req.Target, "item_id": moved.Item, "qty": moved.Qty, "ok": done}
	h.record(c, ownerID, audit.ActionTransfer, detail, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": done, "inventory": snap})
}
