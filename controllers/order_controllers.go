package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Ledger *services.OrderLedger
}

func NewOrderController(db *gorm.DB, ledger *services.OrderLedger) *OrderController {
	return &OrderController{DB: db, Ledger: ledger}
}

// CreateOrder -> buat order baru di dalam session, langsung dengan items
func (oc *OrderController) CreateOrder(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Notes string              `json:"notes"`
		Items []services.ItemLine `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.CreateOrder(sessionID, req.Notes, req.Items)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	realtime.BroadcastOrderUpdate(*order)
	realtime.BroadcastStaffNotification(
		fmt.Sprintf("Order #%d masuk untuk session %d", order.OrderNumber, sessionID))

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrder -> detail 1 order beserta items
func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.SessionOrder
	if err := oc.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AddItems -> tambah line item ke order yang sudah ada
func (oc *OrderController) AddItems(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Items []services.ItemLine `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items, err := oc.Ledger.AddItems(orderID, req.Items)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Items added", items)
}

// EditOrder -> terima desired cart penuh, jalankan diff minimal.
// Idempotent: kirim cart yang sama dua kali menghasilkan nol operasi.
func (oc *OrderController) EditOrder(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Items []services.CartLine `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	plan, err := oc.Ledger.ReconcileEdit(orderID, req.Items)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	if plan.Empty() {
		utils.RespondJSON(c, http.StatusOK, "No changes", plan)
		return
	}

	utils.InfoLogger.Printf("Order %d edited: %d deletes, %d updates, %d creates",
		orderID, len(plan.Deletes), len(plan.Updates), len(plan.Creates))

	utils.RespondJSON(c, http.StatusOK, "Order updated", plan)
}

// UpdateItemQuantity -> ubah qty satu item (tidak boleh < 1)
func (oc *OrderController) UpdateItemQuantity(c *gin.Context) {
	itemID, err := paramUint(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Ledger.UpdateItemQuantity(itemID, req.Quantity)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Quantity updated", item)
}

// DeleteItem -> cancel satu item (soft: status cancelled, keluar dari bill)
func (oc *OrderController) DeleteItem(c *gin.Context) {
	itemID, err := paramUint(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Ledger.DeleteItem(itemID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item cancelled", item)
}

// MarkItemServed -> staff menandai item sudah diantar ke meja.
// Setelah served, qty dan harga item terkunci.
func (oc *OrderController) MarkItemServed(c *gin.Context) {
	itemID, err := paramUint(c, "item_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Ledger.MarkItemServed(itemID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item served", item)
}

// GetDispatchQueue khusus kitchen/bar console - item yang belum served,
// difilter per destination
func (oc *OrderController) GetDispatchQueue(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "staff" && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	dest := c.Query("destination")
	query := oc.DB.Preload("Order").
		Where("status IN ?", []string{models.OrderPending, models.OrderPreparing, models.OrderReady}).
		Order("created_at asc")
	if dest != "" {
		query = query.Where("destination = ?", dest)
	}

	var items []models.SessionOrderItem
	if err := query.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dispatch queue", items)
}
