package middleware

import (
	"net/http"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RouteID names a protected operation in the policy table.
type RouteID int

const (
	RouteAuthMe RouteID = iota + 1

	RouteTablesRead
	RouteTablesWrite
	RouteSessionLifecycle
	RouteSessionsRead

	RouteOrdersRead
	RouteOrdersWrite

	RouteMembersRead
	RouteMembersWrite
	RouteMembersDelete
	RouteMemberWallet

	RouteReservationsRead
	RouteReservationsWrite
	RouteReservationsCheck

	RouteShiftsOwn
	RouteShiftsList

	RouteProductsRead
	RouteProductsWrite
	RouteStockAdjustments

	RoutePromosManage
	RoutePromosValidate

	RouteUsersManage

	RouteConfigRead
	RouteConfigWrite

	RouteManagerReports
)

var (
	anyRole        = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleStaff}
	managerOrAdmin = []models.Role{models.RoleAdmin, models.RoleManager}
	adminOnly      = []models.Role{models.RoleAdmin}
)

// Policy maps every protected route to the roles allowed to call it.
var Policy = map[RouteID][]models.Role{
	RouteAuthMe: anyRole,

	RouteTablesRead:       anyRole,
	RouteTablesWrite:      managerOrAdmin,
	RouteSessionLifecycle: anyRole,
	RouteSessionsRead:     anyRole,

	RouteOrdersRead:  anyRole,
	RouteOrdersWrite: anyRole,

	RouteMembersRead:   anyRole,
	RouteMembersWrite:  anyRole,
	RouteMembersDelete: managerOrAdmin,
	RouteMemberWallet:  anyRole,

	RouteReservationsRead:  anyRole,
	RouteReservationsWrite: anyRole,
	RouteReservationsCheck: anyRole,

	RouteShiftsOwn:  anyRole,
	RouteShiftsList: managerOrAdmin,

	RouteProductsRead:     anyRole,
	RouteProductsWrite:    managerOrAdmin,
	RouteStockAdjustments: managerOrAdmin,

	RoutePromosManage:   managerOrAdmin,
	RoutePromosValidate: anyRole,

	RouteUsersManage: adminOnly,

	RouteConfigRead:  managerOrAdmin,
	RouteConfigWrite: adminOnly,

	RouteManagerReports: managerOrAdmin,
}

// Allowed reports whether role may call route. Unknown routes allow nobody.
func Allowed(route RouteID, role models.Role) bool {
	for _, r := range Policy[route] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize enforces the policy entry for route. It must run after Gatekeeper.
func Authorize(route RouteID) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(ContextUserRoleKey))
		if !Allowed(route, role) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
				"You do not have permission to access this resource.", nil))
			return
		}
		c.Next()
	}
}
