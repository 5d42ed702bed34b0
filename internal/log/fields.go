package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldTool       = "tool"
	FieldCategory   = "category"
	FieldCurrency   = "currency"
	FieldAmount     = "amount"
	FieldLimitType  = "limit_type"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentRPC     = "rpc"
	ComponentTracker = "tracker"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentTrace   = "trace"
)
