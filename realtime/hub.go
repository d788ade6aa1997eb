package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/venue-ops/models"
)

// Event types
const (
	EventSessionRefresh = "session_refresh"
	EventSessionUpdate  = "session_update"
	EventOrderUpdate    = "order_update"
	EventInvoiceUpdate  = "invoice_update"
	EventPaymentUpdate  = "payment_update"
	EventTableUpdate    = "table_update"
	EventStaffNotif     = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client console (kasir, staff, admin) dan
// menyiarkan event perubahan. Event hanya membawa id; client wajib
// reload penuh session-nya, bukan patch inkremental, supaya state
// lokal tidak diverge dari server.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient menambahkan connection dengan role-nya.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient melepaskan dan menutup connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastSessionRefresh menyuruh semua client me-reload satu session.
func BroadcastSessionRefresh(sessionID uint) {
	broadcast(Message{
		Event: EventSessionRefresh,
		Data:  map[string]interface{}{"session_id": sessionID},
	})
}

// BroadcastSessionUpdate menyiarkan perubahan status session.
func BroadcastSessionUpdate(session models.TableSession) {
	broadcast(Message{
		Event: EventSessionUpdate,
		Data:  session,
	})
}

// BroadcastOrderUpdate menyiarkan perubahan order dapur/bar.
func BroadcastOrderUpdate(order models.SessionOrder) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastInvoiceUpdate menyiarkan invoice baru / berubah status.
func BroadcastInvoiceUpdate(invoice models.SessionInvoice) {
	broadcast(Message{
		Event: EventInvoiceUpdate,
		Data:  invoice,
	})
}

// BroadcastPaymentUpdate menyiarkan payment yang baru tercatat.
func BroadcastPaymentUpdate(payment models.SessionPayment, invoice models.SessionInvoice) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data: map[string]interface{}{
			"payment": payment,
			"invoice": invoice,
		},
	})
}

// BroadcastTableUpdate menyiarkan perubahan status meja.
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

// BroadcastStaffNotification mengirim notifikasi teks untuk staff.
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// BroadcastMessage untuk pesan umum.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
