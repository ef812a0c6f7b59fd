package models

// Roles recognised by the API.
const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleMD         = "MD"
	RoleFinance    = "FINANCE"
	RoleOperations = "OPERATIONS"
	RoleQuality    = "QUALITY"
	RoleCWSManager = "CWS_MANAGER"
)

// Caller is the resolved identity behind a request. StationID is set only
// for station-scoped users.
type Caller struct {
	UserID    int    `json:"userId"`
	Role      string `json:"role"`
	StationID *int   `json:"cwsId,omitempty"`
}
