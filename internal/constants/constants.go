package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

const (
	HeaderRequestID     = "X-Request-ID"
	AuthorizationScheme = "Bearer"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits
const (
	MaxUsernameLength = 255
	MaxNameLength     = 255
	MaxPasswordLength = 72 // bcrypt ignores input past 72 bytes
)

// AI task drafting
const (
	MaxAIDraftedTasks = 20
	MaxAIInputLength  = 8000
)
