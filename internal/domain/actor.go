package domain

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSalesAgent Role = "sales_agent"
	RoleWarehouse  Role = "warehouse"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSalesAgent, RoleWarehouse:
		return true
	}
	return false
}

// Actor is the authenticated party holding a cart.
// Channel is only meaningful for customers ordering for themselves.
type Actor struct {
	ID      string
	Role    Role
	Channel ChannelType
}

// OrdersForOthers reports whether the actor must pick a beneficiary customer before checkout.
func (a Actor) OrdersForOthers() bool {
	return a.Role == RoleSalesAgent || a.Role == RoleWarehouse
}

// Customer is the beneficiary of an order.
type Customer struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ChannelType ChannelType `json:"channel_type"`
}
