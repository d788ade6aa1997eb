package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/venue-ops/controllers"
	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/utils"
)

// setupTestDBForTables menggunakan SQLite in-memory khusus untuk TableController
func setupTestDBForTables() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(&models.Table{}, &models.TableSession{})
	if err != nil {
		panic(err)
	}
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	tableCtrl := controllers.NewTableController(db)
	router.POST("/tables", tableCtrl.CreateTable)
	router.GET("/tables", tableCtrl.GetAllTables)
	router.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
	return router
}

func TestGetAllTables(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()

	// Seed data: dua meja, satu di antaranya sedang dipakai session
	table1 := models.Table{TableNumber: "A1", SeatCount: 2, Status: models.TableAvailable}
	table2 := models.Table{TableNumber: "B1", SeatCount: 4, Status: models.TableOccupied}
	db.Create(&table1)
	db.Create(&table2)
	db.Create(&models.TableSession{
		VenueID: 1, TableID: &table2.ID, GuestName: "Budi",
		GuestCount: 2, Status: models.SessionOpen,
	})

	router := setupTableRouter(db)
	req, err := http.NewRequest("GET", "/tables", nil)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "List of tables", response["message"])

	// Floor view: meja B1 membawa session aktifnya
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	second := data[1].(map[string]interface{})
	assert.Equal(t, "B1", second["table_number"])
	assert.NotNil(t, second["session"])
}

func TestCreateTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()
	router := setupTableRouter(db)

	payload := map[string]interface{}{"table_number": "D1", "zone": "teras"}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/tables", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	// SeatCount default 2 kalau tidak diisi
	assert.Equal(t, float64(2), data["seat_count"])
	assert.Equal(t, models.TableAvailable, data["status"])
}

func TestUpdateTableStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()

	table := models.Table{TableNumber: "C1", SeatCount: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)

	payload := map[string]string{"status": models.TableReserved}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	url := "/tables/" + strconv.Itoa(int(table.ID))
	req, err := http.NewRequest("PATCH", url, bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Table status updated", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.TableReserved, data["status"])
}

func TestUpdateTableStatusRejectsActiveSession(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()

	table := models.Table{TableNumber: "E1", SeatCount: 4, Status: models.TableOccupied}
	db.Create(&table)
	db.Create(&models.TableSession{
		VenueID: 1, TableID: &table.ID, GuestName: "Sari",
		GuestCount: 3, Status: models.SessionBilling,
	})

	router := setupTableRouter(db)

	payload := map[string]string{"status": models.TableMaintenance}
	payloadBytes, _ := json.Marshal(payload)
	url := "/tables/" + strconv.Itoa(int(table.ID))
	req, _ := http.NewRequest("PATCH", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateTableStatusUnknownStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()

	table := models.Table{TableNumber: "F1", SeatCount: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)

	payload := map[string]string{"status": "kotor"}
	payloadBytes, _ := json.Marshal(payload)
	url := "/tables/" + strconv.Itoa(int(table.ID))
	req, _ := http.NewRequest("PATCH", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
