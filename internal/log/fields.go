package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldEndpoint   = "endpoint"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldResource   = "resource"
	FieldAccountID  = "account_id"
	FieldGoalID     = "goal_id"
	FieldKind       = "kind"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentGateway = "gateway"
	ComponentStore   = "store"
	ComponentSession = "session"
	ComponentMetrics = "metrics"
)

// Operations defines standard operation names
const (
	OpLoad       = "load"
	OpRefresh    = "refresh"
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpInvalidate = "invalidate"
	OpLogout     = "logout"
)
