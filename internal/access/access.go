package access

import "fmt"

// Role is the account type stored on a user and carried in the "role" token claim
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleEngineer Role = "engineer"
)

// Roles lists every role a token may carry
var Roles = []Role{RoleCustomer, RoleStaff, RoleEngineer}

// ParseRole validates a raw role string
func ParseRole(raw string) (Role, error) {
	for _, r := range Roles {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role '%s'. Allowed roles: customer, staff, engineer", raw)
}

// Capability is a single permission checked before a handler runs
type Capability int

const (
	BrowseMenu Capability = iota + 1
	ManageCart
	PlaceOrder
	ViewOwnOrders
	SubmitReview
	ManageDishes
	ManageOrders
	ViewReports
	ManageClients
)

var capabilityNames = map[Capability]string{
	BrowseMenu:    "browse_menu",
	ManageCart:    "manage_cart",
	PlaceOrder:    "place_order",
	ViewOwnOrders: "view_own_orders",
	SubmitReview:  "submit_review",
	ManageDishes:  "manage_dishes",
	ManageOrders:  "manage_orders",
	ViewReports:   "view_reports",
	ManageClients: "manage_clients",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// grants is the single role -> capability table.
// Orders can only be owned by customers, so only customers get the cart and checkout capabilities.
var grants = map[Role][]Capability{
	RoleCustomer: {BrowseMenu, ManageCart, PlaceOrder, ViewOwnOrders, SubmitReview},
	RoleStaff:    {BrowseMenu, ViewOwnOrders, ManageDishes, ManageOrders, ViewReports},
	RoleEngineer: {BrowseMenu, ViewOwnOrders, ManageDishes, ManageOrders, ViewReports, ManageClients},
}

// Allows reports whether role holds capability
func Allows(role Role, capability Capability) bool {
	for _, c := range grants[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID uint
	Role   Role
}

// Can reports whether the principal holds capability
func (p Principal) Can(capability Capability) bool {
	return Allows(p.Role, capability)
}
