package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/venue-ops/controllers"
	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

// setupTestDBForSessions migrate semua model yang disentuh lifecycle session
func setupTestDBForSessions() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Table{},
		&models.Guest{},
		&models.Booking{},
		&models.TableSession{},
		&models.SessionOrder{},
		&models.SessionOrderItem{},
		&models.SessionInvoice{},
		&models.SessionPayment{},
		&models.Promo{},
		&models.VenueSettings{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

type sessionTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	service *services.SessionService
	ledger  *services.OrderLedger
}

func setupSessionRouter() sessionTestEnv {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	db := setupTestDBForSessions()

	sessionSvc := services.NewSessionService(db)
	settingsSvc := services.NewSettingsService(db)
	promoSvc := services.NewPromoService(db)
	ledger := services.NewOrderLedger(db, sessionSvc)

	sessionCtrl := controllers.NewSessionController(db, sessionSvc, settingsSvc, promoSvc)

	router := gin.Default()
	router.POST("/sessions", sessionCtrl.OpenSession)
	router.GET("/sessions", sessionCtrl.GetActiveSessions)
	router.GET("/sessions/:session_id", sessionCtrl.GetSession)
	router.POST("/sessions/:session_id/bill-preview", sessionCtrl.BillPreview)
	router.POST("/sessions/:session_id/close", sessionCtrl.CloseSession)

	return sessionTestEnv{db: db, router: router, service: sessionSvc, ledger: ledger}
}

func jsonBody(body []byte) *bytes.Buffer {
	return bytes.NewBuffer(body)
}

func newRecorder(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOpenSessionEndpoint(t *testing.T) {
	env := setupSessionRouter()

	w := postJSON(t, env.router, "/sessions", map[string]interface{}{
		"venue_id":    1,
		"guest_name":  "Budi",
		"guest_count": 3,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Session opened", response["message"])
	data := response["data"].(map[string]interface{})
	session := data["session"].(map[string]interface{})
	assert.Equal(t, models.SessionOpen, session["status"])
	assert.Equal(t, float64(3), session["guest_count"])
}

func TestOpenSessionRequiresGuestName(t *testing.T) {
	env := setupSessionRouter()

	w := postJSON(t, env.router, "/sessions", map[string]interface{}{
		"venue_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillPreviewEndpoint(t *testing.T) {
	env := setupSessionRouter()

	result, err := env.service.Open(services.OpenParams{VenueID: 1, GuestName: "Sari", GuestCount: 2})
	require.NoError(t, err)
	_, err = env.ledger.CreateOrder(result.Session.ID, "", []services.ItemLine{
		{Name: "Nasi Goreng", Quantity: 2, UnitPrice: 45000, Destination: models.DestKitchen},
		{Name: "Es Teh", Quantity: 1, UnitPrice: 10000, Destination: models.DestBar},
	})
	require.NoError(t, err)

	// Rate eksplisit 10% + 5% -> grand total 115rb, tidak ada yang tersimpan
	url := fmt.Sprintf("/sessions/%d/bill-preview", result.Session.ID)
	w := postJSON(t, env.router, url, map[string]interface{}{
		"tax_rate":            10,
		"service_charge_rate": 5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	breakdown := data["breakdown"].(map[string]interface{})
	assert.Equal(t, float64(100000), breakdown["subtotal"])
	assert.Equal(t, float64(115000), breakdown["grand_total"])
	assert.Equal(t, float64(3), data["item_count"])

	var invoiceCount int64
	env.db.Model(&models.SessionInvoice{}).Count(&invoiceCount)
	assert.Equal(t, int64(0), invoiceCount)
}

// Discount dan tip bisa dikirim sebagai {kind, value}; persen
// di-resolve terhadap subtotal sebelum pajak.
func TestBillPreviewPercentAdjustments(t *testing.T) {
	env := setupSessionRouter()

	result, err := env.service.Open(services.OpenParams{VenueID: 1, GuestName: "Sari", GuestCount: 2})
	require.NoError(t, err)
	_, err = env.ledger.CreateOrder(result.Session.ID, "", []services.ItemLine{
		{Name: "Paket Keluarga", Quantity: 1, UnitPrice: 100000, Destination: models.DestKitchen},
	})
	require.NoError(t, err)

	url := fmt.Sprintf("/sessions/%d/bill-preview", result.Session.ID)
	w := postJSON(t, env.router, url, map[string]interface{}{
		"tax_rate":            10,
		"service_charge_rate": 5,
		"discount":            map[string]interface{}{"kind": "percent", "value": 10},
		"tip":                 map[string]interface{}{"kind": "fixed", "value": 5000},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	breakdown := response["data"].(map[string]interface{})["breakdown"].(map[string]interface{})
	// 10% dari subtotal 100rb, bukan dari nilai kena pajak
	assert.Equal(t, float64(10000), breakdown["total_discount"])
	assert.Equal(t, float64(5000), breakdown["tip_amount"])
	assert.Equal(t, float64(110000), breakdown["grand_total"])
}

func TestGenerateInvoiceEndpointPercentDiscount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	db := setupTestDBForSessions()

	sessionSvc := services.NewSessionService(db)
	settingsSvc := services.NewSettingsService(db)
	promoSvc := services.NewPromoService(db)
	ledger := services.NewOrderLedger(db, sessionSvc)
	invoiceSvc := services.NewInvoiceService(db, sessionSvc)
	invoiceCtrl := controllers.NewInvoiceController(db, invoiceSvc, sessionSvc, settingsSvc, promoSvc)

	router := gin.Default()
	router.POST("/sessions/:session_id/invoices", invoiceCtrl.GenerateInvoice)

	result, err := sessionSvc.Open(services.OpenParams{VenueID: 1, GuestName: "Budi", GuestCount: 2})
	require.NoError(t, err)
	_, err = ledger.CreateOrder(result.Session.ID, "", []services.ItemLine{
		{Name: "Paket Keluarga", Quantity: 1, UnitPrice: 100000, Destination: models.DestKitchen},
	})
	require.NoError(t, err)

	url := fmt.Sprintf("/sessions/%d/invoices", result.Session.ID)
	w := postJSON(t, router, url, map[string]interface{}{
		"tax_rate":            10,
		"service_charge_rate": 5,
		"discount":            map[string]interface{}{"kind": "percent", "value": 20},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invoice models.SessionInvoice
	require.NoError(t, db.Where("session_id = ?", result.Session.ID).First(&invoice).Error)
	assert.Equal(t, 20000.0, invoice.DiscountAmount)
	assert.Equal(t, 95000.0, invoice.TotalAmount) // 100rb + 15rb - 20rb
}

func TestCloseSessionNotSettledEndpoint(t *testing.T) {
	env := setupSessionRouter()

	result, err := env.service.Open(services.OpenParams{VenueID: 1, GuestName: "Tono", GuestCount: 2})
	require.NoError(t, err)
	_, err = env.ledger.CreateOrder(result.Session.ID, "", []services.ItemLine{
		{Name: "Kopi", Quantity: 1, UnitPrice: 25000, Destination: models.DestBar},
	})
	require.NoError(t, err)

	invoices := services.NewInvoiceService(env.db, env.service)
	_, err = invoices.GenerateInvoice(result.Session.ID, services.GenerateParams{})
	require.NoError(t, err)

	url := fmt.Sprintf("/sessions/%d/close", result.Session.ID)
	w := postJSON(t, env.router, url, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	env := setupSessionRouter()

	req, _ := http.NewRequest("GET", "/sessions/9999", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
