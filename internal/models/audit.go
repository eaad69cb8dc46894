package models

// Audit actions recorded by the directory service. The set is fixed
// server-side; unknown actions are passed through untouched.
const (
	AuditCreateUser      = "CREATE_USER"
	AuditUpdateUser      = "UPDATE_USER"
	AuditDeleteUser      = "DELETE_USER"
	AuditBlockUser       = "BLOCK_USER"
	AuditUnblockUser     = "UNBLOCK_USER"
	AuditResetPassword   = "RESET_PASSWORD"
	AuditExpirePassword  = "EXPIRE_PASSWORD"
	AuditRenewExpiration = "RENEW_EXPIRATION"
	AuditAddToGroup      = "ADD_TO_GROUP"
	AuditRemoveFromGroup = "REMOVE_FROM_GROUP"
	AuditLogin           = "LOGIN"
	AuditLogout          = "LOGOUT"
)

// AuditLogEntry is a single audit record owned by the directory service.
// Append-only and immutable; this backend only ever reads them.
type AuditLogEntry struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	PerformedBy string         `json:"performedBy"`
	TargetUser  string         `json:"targetUser"`
	IPAddress   string         `json:"ipAddress"`
	Success     bool           `json:"success"`
	Timestamp   string         `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
}
