package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches internal/middleware/auth.go keys)
	FieldUserID = "user_id"
	FieldEmail  = "email"
	FieldRole   = "role"

	// Chat relay
	FieldConnID    = "conn_id"
	FieldChatID    = "chat_id"
	FieldRoomID    = "room_id"
	FieldEventType = "event_type"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
