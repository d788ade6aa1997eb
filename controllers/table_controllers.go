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

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		SeatCount   int    `json:"seat_count"`
		Zone        string `json:"zone"`
		Status      string `json:"status"` // optional, default "available"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		SeatCount:   req.SeatCount,
		Zone:        req.Zone,
		Status:      models.TableAvailable,
	}
	if table.SeatCount < 1 {
		table.SeatCount = 2
	}
	if req.Status != "" {
		if !models.ValidTableStatus(req.Status) {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("unknown table status %q", req.Status))
			return
		}
		table.Status = req.Status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("New table created: %s (seats=%d, zone=%s)",
		table.TableNumber, table.SeatCount, table.Zone)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> floor view: semua meja plus session aktifnya (jika ada)
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	query := tc.DB.Order("table_number asc")
	if zone := c.Query("zone"); zone != "" {
		query = query.Where("zone = ?", zone)
	}
	if err := query.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Ambil session aktif per meja dalam satu query
	var sessions []models.TableSession
	tc.DB.Where("table_id IS NOT NULL AND status != ?", models.SessionClosed).
		Find(&sessions)
	byTable := make(map[uint]models.TableSession, len(sessions))
	for _, s := range sessions {
		byTable[*s.TableID] = s
	}

	type tableView struct {
		models.Table
		Session *models.TableSession `json:"session,omitempty"`
	}
	views := make([]tableView, 0, len(tables))
	for _, t := range tables {
		view := tableView{Table: t}
		if s, ok := byTable[t.ID]; ok {
			view.Session = &s
		}
		views = append(views, view)
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// GetTableByID -> detail 1 meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := paramUint(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableStatus -> ubah status meja manual (reserved/maintenance).
// Status occupied/available mengikuti lifecycle session; meja dengan
// session aktif tidak boleh dipindah manual.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, err := paramUint(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidTableStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("unknown table status %q", req.Status))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var activeCount int64
	tc.DB.Model(&models.TableSession{}).
		Where("table_id = ? AND status != ?", table.ID, models.SessionClosed).
		Count(&activeCount)
	if activeCount > 0 {
		utils.RespondError(c, http.StatusConflict, services.ErrTableInUse)
		return
	}

	table.Status = req.Status
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %s status changed to %s", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> hapus meja (admin saja, tidak boleh ada session aktif)
func (tc *TableController) DeleteTable(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := paramUint(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var activeCount int64
	tc.DB.Model(&models.TableSession{}).
		Where("table_id = ? AND status != ?", id, models.SessionClosed).
		Count(&activeCount)
	if activeCount > 0 {
		utils.RespondError(c, http.StatusConflict, services.ErrTableInUse)
		return
	}

	if err := tc.DB.Delete(&models.Table{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"table_id": id})
}
