package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"nutriapi/internal/store"
)

// Order statuses
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderCompleted, OrderCancelled},
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListAll(r.Context(), store.SheetOrders)
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFrom(r.Context())
	query := store.Query{}
	if !identity.IsAdmin() {
		query.Conditions = append(query.Conditions, store.Condition{Column: "user_id", Value: identity.UserID})
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query.Conditions = append(query.Conditions, store.Condition{Column: "status", Value: status})
	}

	views := make([]map[string]interface{}, 0, len(orders))
	for _, order := range store.Filter(orders, query) {
		views = append(views, order.Values)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeBadRequest(w, "an order needs at least one item")
		return
	}

	// Resolve every product up front so the total and the captured prices
	// come from a single read.
	type line struct {
		productID string
		quantity  int64
		price     float64
	}
	lines := make([]line, 0, len(req.Items))
	var total float64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			writeBadRequest(w, "quantity must be positive for product %s", item.ProductID)
			return
		}
		product, err := s.store.FindByID(r.Context(), store.SheetProducts, item.ProductID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !product.GetAsBool("is_active", false) {
			writeBadRequest(w, "product %s is not available", item.ProductID)
			return
		}
		price := product.GetAsFloat64("price", 0)
		lines = append(lines, line{productID: item.ProductID, quantity: item.Quantity, price: price})
		total += price * float64(item.Quantity)
	}

	identity := identityFrom(r.Context())
	now := time.Now().UTC().Format(time.RFC3339)

	orderID, order, err := s.store.Insert(r.Context(), store.SheetOrders, map[string]interface{}{
		"user_id":      identity.UserID,
		"total_amount": total,
		"status":       OrderPending,
		"payment_id":   uuid.NewString(),
		"created_at":   now,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The parent row and its item rows are separate appends with no
	// cross-sheet transaction; a failure here leaves a partial order.
	items := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		_, item, err := s.store.Insert(r.Context(), store.SheetOrderItems, map[string]interface{}{
			"order_id":          orderID,
			"product_id":        l.productID,
			"quantity":          l.quantity,
			"price_at_purchase": l.price,
			"created_at":        now,
		})
		if err != nil {
			log.Error().Err(err).Int64("order_id", orderID).Str("product_id", l.productID).
				Msg("Order left with partial line items")
			writeError(w, err)
			return
		}
		items = append(items, item.Values)
	}

	view := order.Values
	view["items"] = items
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.FindByID(r.Context(), store.SheetOrders, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if !canAccessUser(r, order.GetAsString("user_id", "")) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	allItems, err := s.store.ListAll(r.Context(), store.SheetOrderItems)
	if err != nil {
		writeError(w, err)
		return
	}
	itemQuery := store.Query{Conditions: []store.Condition{{Column: "order_id", Value: order.GetAsInt64("id", 0)}}}

	items := make([]map[string]interface{}, 0)
	for _, item := range store.Filter(allItems, itemQuery) {
		items = append(items, item.Values)
	}

	view := order.Values
	view["items"] = items
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	order, err := s.store.FindByID(r.Context(), store.SheetOrders, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	current := order.GetAsString("status", "")
	if !transitionAllowed(orderTransitions, current, req.Status) {
		writeBadRequest(w, "cannot change status from %s to %s", current, req.Status)
		return
	}

	updated, err := s.store.UpdateByID(r.Context(), store.SheetOrders, order.ID(), map[string]interface{}{
		"status": req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Values)
}
