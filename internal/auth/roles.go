package auth

import "wetmill-backend/internal/models"

func hasRole(c models.Caller, roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// IsStationManager reports whether the caller manages the given station.
func IsStationManager(c models.Caller, stationID int) bool {
	return c.Role == models.RoleCWSManager && c.StationID != nil && *c.StationID == stationID
}

// IsAnyStationManager reports whether the caller manages some station.
func IsAnyStationManager(c models.Caller) bool {
	return c.Role == models.RoleCWSManager && c.StationID != nil
}

// IsQualityStaff covers the roles allowed to record lab results.
func IsQualityStaff(c models.Caller) bool {
	return hasRole(c, models.RoleAdmin, models.RoleQuality)
}

func IsAdmin(c models.Caller) bool {
	return c.Role == models.RoleAdmin
}

// CanViewQuality covers the head-office roles that read quality data.
func CanViewQuality(c models.Caller) bool {
	return hasRole(c,
		models.RoleAdmin,
		models.RoleSuperAdmin,
		models.RoleSupervisor,
		models.RoleMD,
		models.RoleFinance,
		models.RoleOperations,
		models.RoleQuality,
	)
}

// CanManageCatalog covers writes to reference data such as sample storage.
func CanManageCatalog(c models.Caller) bool {
	return hasRole(c, models.RoleAdmin, models.RoleSuperAdmin)
}

// CanAccessStation reports whether the caller may act on a station's data:
// head-office roles on any station, a manager on their own.
func CanAccessStation(c models.Caller, stationID int) bool {
	if c.Role == models.RoleCWSManager {
		return IsStationManager(c, stationID)
	}
	return CanViewQuality(c)
}

// CanOperateStation covers writes to a station's stock records: its own
// manager, or head-office admins and operations.
func CanOperateStation(c models.Caller, stationID int) bool {
	if c.Role == models.RoleCWSManager {
		return IsStationManager(c, stationID)
	}
	return hasRole(c, models.RoleAdmin, models.RoleSuperAdmin, models.RoleOperations)
}

// CanViewReports covers the management roles that read stock and yield.
func CanViewReports(c models.Caller) bool {
	return hasRole(c,
		models.RoleAdmin,
		models.RoleSuperAdmin,
		models.RoleSupervisor,
		models.RoleMD,
		models.RoleFinance,
		models.RoleOperations,
	)
}
