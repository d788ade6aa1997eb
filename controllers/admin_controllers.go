package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	chart "github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/models"
	"github.com/yeremiapane/venue-ops/realtime"
	"github.com/yeremiapane/venue-ops/services"
	"github.com/yeremiapane/venue-ops/utils"
)

type AdminController struct {
	DB       *gorm.DB
	Invoices *services.InvoiceService
}

func NewAdminController(db *gorm.DB, invoices *services.InvoiceService) *AdminController {
	return &AdminController{DB: db, Invoices: invoices}
}

// GetDashboardStats mengambil statistik untuk dashboard.
// Route-nya dilindungi RequireRole("admin").
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalSessions int64   `json:"total_sessions"`
		TodaySessions int64   `json:"today_sessions"`
		TotalRevenue  float64 `json:"total_revenue"`
		TodayRevenue  float64 `json:"today_revenue"`
		AvgSessionMin float64 `json:"avg_session_minutes"`
		SessionStats  struct {
			Open    int64 `json:"open"`
			Billing int64 `json:"billing"`
			Paid    int64 `json:"paid"`
			Closed  int64 `json:"closed"`
		} `json:"session_stats"`
		InvoiceStats struct {
			Pending       int64   `json:"pending"`
			PartiallyPaid int64   `json:"partially_paid"`
			Paid          int64   `json:"paid"`
			Void          int64   `json:"void"`
			Outstanding   float64 `json:"outstanding"`
		} `json:"invoice_stats"`
		TableStats struct {
			Available   int64 `json:"available"`
			Reserved    int64 `json:"reserved"`
			Occupied    int64 `json:"occupied"`
			Maintenance int64 `json:"maintenance"`
		} `json:"table_stats"`
	}

	// Query total dan today sessions
	ac.DB.Model(&models.TableSession{}).Count(&stats.TotalSessions)
	ac.DB.Model(&models.TableSession{}).Where("DATE(opened_at) = ?", today).Count(&stats.TodaySessions)

	// Query session status counts
	ac.DB.Model(&models.TableSession{}).Where("status = ?", models.SessionOpen).Count(&stats.SessionStats.Open)
	ac.DB.Model(&models.TableSession{}).Where("status = ?", models.SessionBilling).Count(&stats.SessionStats.Billing)
	ac.DB.Model(&models.TableSession{}).Where("status = ?", models.SessionPaid).Count(&stats.SessionStats.Paid)
	ac.DB.Model(&models.TableSession{}).Where("status = ?", models.SessionClosed).Count(&stats.SessionStats.Closed)

	// Query invoice stats
	ac.DB.Model(&models.SessionInvoice{}).Where("status = ?", models.InvoicePending).Count(&stats.InvoiceStats.Pending)
	ac.DB.Model(&models.SessionInvoice{}).Where("status = ?", models.InvoicePartiallyPaid).Count(&stats.InvoiceStats.PartiallyPaid)
	ac.DB.Model(&models.SessionInvoice{}).Where("status = ?", models.InvoicePaid).Count(&stats.InvoiceStats.Paid)
	ac.DB.Model(&models.SessionInvoice{}).Where("status = ?", models.InvoiceVoid).Count(&stats.InvoiceStats.Void)

	// Outstanding = total belum tertagih di invoice aktif
	ac.DB.Model(&models.SessionInvoice{}).
		Where("status IN ?", []string{models.InvoicePending, models.InvoicePartiallyPaid}).
		Select("COALESCE(SUM(total_amount - amount_paid), 0)").
		Row().Scan(&stats.InvoiceStats.Outstanding)

	// Revenue dari payments (append-only, jadi SUM langsung akurat)
	ac.DB.Model(&models.SessionPayment{}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TotalRevenue)
	ac.DB.Model(&models.SessionPayment{}).
		Where("DATE(paid_at) = ?", today).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TodayRevenue)

	// Table stats
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&stats.TableStats.Available)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableReserved).Count(&stats.TableStats.Reserved)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableOccupied).Count(&stats.TableStats.Occupied)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableMaintenance).Count(&stats.TableStats.Maintenance)

	// Rata-rata durasi session (menit), hanya yang sudah closed
	ac.DB.Model(&models.TableSession{}).
		Where("status = ? AND closed_at IS NOT NULL", models.SessionClosed).
		Select("COALESCE(AVG(TIMESTAMPDIFF(MINUTE, opened_at, closed_at)), 0)").
		Row().Scan(&stats.AvgSessionMin)

	realtime.BroadcastMessage(realtime.Message{
		Event: "dashboard_stats",
		Data:  stats,
	})

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// GetSalesReport mengambil laporan penjualan per metode pembayaran
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	var sales struct {
		TotalSales    float64 `json:"total_sales"`
		TotalInvoices int64   `json:"total_invoices"`
		AverageBill   float64 `json:"average_bill"`
		ByMethod      []struct {
			Method string  `json:"method"`
			Count  int64   `json:"count"`
			Amount float64 `json:"amount"`
		} `json:"by_method"`
	}

	ac.DB.Model(&models.SessionPayment{}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&sales.TotalSales)
	ac.DB.Model(&models.SessionInvoice{}).
		Where("status = ?", models.InvoicePaid).Count(&sales.TotalInvoices)
	if sales.TotalInvoices > 0 {
		sales.AverageBill = sales.TotalSales / float64(sales.TotalInvoices)
	}

	ac.DB.Raw(`
		SELECT method, COUNT(id) as count, COALESCE(SUM(amount), 0) as amount
		FROM session_payments
		GROUP BY method
		ORDER BY amount DESC
	`).Scan(&sales.ByMethod)

	utils.RespondJSON(c, http.StatusOK, "Sales report", gin.H{
		"data": gin.H{
			"sales": sales,
		},
	})
}

// ExportInvoicePDF merender satu invoice menjadi PDF untuk diunduh
// atau dicetak ulang
func (ac *AdminController) ExportInvoicePDF(c *gin.Context) {
	invoiceID, err := paramUint(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	invoice, err := ac.Invoices.Load(invoiceID)
	if err != nil {
		utils.RespondError(c, services.HTTPStatus(err), err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, invoice.InvoiceNumber)
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Session #%d - %s", invoice.SessionID,
		invoice.CreatedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(6)
	if invoice.GuestName != "" {
		pdf.Cell(0, 8, "Guest: "+invoice.GuestName)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	line := func(label string, amount float64) {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, utils.FormatCurrencyIDR(amount), "", 1, "R", false, 0, "")
	}
	line("Subtotal", invoice.Subtotal)
	line("Tax", invoice.TaxAmount)
	line("Service charge", invoice.ServiceCharge)
	if invoice.DiscountAmount > 0 {
		label := "Discount"
		if invoice.DiscountReason != "" {
			label = "Discount (" + invoice.DiscountReason + ")"
		}
		line(label, -invoice.DiscountAmount)
	}
	if invoice.DepositCredit > 0 {
		line("Deposit credit", -invoice.DepositCredit)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 9, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, utils.FormatCurrencyIDR(invoice.TotalAmount), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(4)
	for _, p := range invoice.Payments {
		pdf.CellFormat(120, 6,
			fmt.Sprintf("Paid via %s (%s)", p.Method, p.PaidAt.Format("15:04")),
			"", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, utils.FormatCurrencyIDR(p.Amount), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GetRevenueChart merender grafik revenue harian (PNG) untuk N hari
// terakhir, default 14
func (ac *AdminController) GetRevenueChart(c *gin.Context) {
	days := 14
	if v := c.Query("days"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &days); err != nil || days < 1 || days > 90 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("days must be 1-90"))
			return
		}
	}

	type daily struct {
		Day    string
		Amount float64
	}
	var rows []daily
	ac.DB.Raw(`
		SELECT DATE(paid_at) as day, COALESCE(SUM(amount), 0) as amount
		FROM session_payments
		WHERE paid_at >= ?
		GROUP BY DATE(paid_at)
		ORDER BY day ASC
	`, time.Now().AddDate(0, 0, -days)).Scan(&rows)

	// Isi hari kosong dengan 0 supaya sumbu X kontinu
	amounts := make(map[string]float64, len(rows))
	for _, r := range rows {
		amounts[r.Day] = r.Amount
	}
	xs := make([]time.Time, 0, days)
	ys := make([]float64, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		xs = append(xs, day)
		ys = append(ys, amounts[day.Format("2006-01-02")])
	}

	graph := chart.Chart{
		Title:  "Daily revenue",
		Width:  900,
		Height: 360,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Revenue",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
