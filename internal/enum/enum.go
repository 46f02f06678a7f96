package enum

// ── Group A: State machines (enforced by the order service) ──

const (
	OrderStatusOpen      = "open"
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// ── Group C: Borderline (checked by middleware) ──

const (
	UserRoleAdmin  = "admin"
	UserRoleMember = "member"
)

// ── Group B: Configurable labels (no server constraint) ──

const (
	FeeTypePercentage = "percentage"
	FeeTypeFlat       = "flat"
)

const (
	ExportTypeCSV = "csv"
)

const (
	// DefaultUnit is the unit given to items created from a manual stock entry.
	DefaultUnit = "unit"
)

const (
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// IsOrderStatus reports whether s is one of the known order statuses.
func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusOpen, OrderStatusPending, OrderStatusCompleted:
		return true
	}
	return false
}

// IsFeeType reports whether s is a known fee type.
func IsFeeType(s string) bool {
	switch s {
	case FeeTypePercentage, FeeTypeFlat:
		return true
	}
	return false
}
