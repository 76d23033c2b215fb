package store

// Sheet names, one per entity type. Each sheet carries a header row whose
// first column must be "id".
const (
	SheetUsers          = "users"
	SheetProducts       = "products"
	SheetNutritionPlans = "nutrition_plans"
	SheetAppointments   = "appointments"
	SheetOrders         = "orders"
	SheetOrderItems     = "order_items"
)

// Columns describes the expected column order of each sheet. The live
// header row remains authoritative at runtime; this table is used to
// provision sheets and to validate configuration at startup.
var Columns = map[string][]string{
	SheetUsers:          {"id", "username", "email", "password_hash", "full_name", "role", "created_at"},
	SheetProducts:       {"id", "name", "description", "price", "file_url", "category", "image_url", "is_active", "created_at"},
	SheetNutritionPlans: {"id", "name", "description", "price", "duration_minutes", "is_active", "created_at"},
	SheetAppointments:   {"id", "user_id", "plan_id", "appointment_date", "appointment_time", "status", "notes", "created_at"},
	SheetOrders:         {"id", "user_id", "total_amount", "status", "payment_id", "created_at"},
	SheetOrderItems:     {"id", "order_id", "product_id", "quantity", "price_at_purchase", "created_at"},
}

// Sheets lists all sheet names in provisioning order
func Sheets() []string {
	return []string{
		SheetUsers,
		SheetProducts,
		SheetNutritionPlans,
		SheetAppointments,
		SheetOrders,
		SheetOrderItems,
	}
}
