package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"stayhub-backend/internal/security"
	"stayhub-backend/internal/service"
)

// NewRouter wires the REST surface. Everything under /api requires a
// bearer token; the webhook endpoint authenticates with an HMAC
// signature instead and stays outside the auth middleware.
func NewRouter(
	bookings service.BookingService,
	notifications service.NotificationService,
	reconciler service.PaymentReconciler,
	tokens security.TokenManager,
	webhookSecret string,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	webhooks := NewWebhookHandler(reconciler, webhookSecret)
	router.HandleFunc("/webhooks/payment", webhooks.HandleNotification).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	bookingHandler := NewBookingHandler(bookings)
	api.HandleFunc("/bookings", bookingHandler.Create).Methods("POST")
	api.HandleFunc("/bookings", bookingHandler.List).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookingHandler.Get).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookingHandler.Cancel).Methods("DELETE")
	api.HandleFunc("/bookings/{id}/status", bookingHandler.GetStatus).Methods("GET")
	api.HandleFunc("/bookings/{id}/guest-details", bookingHandler.AttachGuestDetails).Methods("PUT")
	api.HandleFunc("/bookings/{id}/payment", bookingHandler.InitiatePayment).Methods("POST")
	api.HandleFunc("/bookings/{id}/payment/verify", bookingHandler.VerifyPayment).Methods("POST")
	api.HandleFunc("/bookings/{id}/pay-at-property", bookingHandler.ConfirmPayAtProperty).Methods("POST")

	notificationHandler := NewNotificationHandler(notifications)
	api.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")

	return router
}
