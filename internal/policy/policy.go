// Package policy decides which staff role may move an order or an order item
// between which statuses. It is pure: no storage, no side effects, just the
// state graphs and the role matrix.
//
// Order level:
//
//	confirmed -> cooking -> checkout -> completed
//	confirmed -> cancelled
//	cooking   -> cancelled
//
// Item level:
//
//	pending -> preparing -> ready -> served
//
// The matrix encodes separation of duties: a cook cannot mark food served, a
// cashier cannot start cooking, and nobody skips intermediate states.
// Managers and owners are unrestricted for exception handling.
package policy

import (
	"fmt"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

type orderEdge struct {
	from domain.OrderStatus
	to   domain.OrderStatus
}

type itemEdge struct {
	from domain.ItemStatus
	to   domain.ItemStatus
}

var orderGraph = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusConfirmed: {domain.OrderStatusCooking, domain.OrderStatusCancelled},
	domain.OrderStatusCooking:   {domain.OrderStatusCheckout, domain.OrderStatusCancelled},
	domain.OrderStatusCheckout:  {domain.OrderStatusCompleted},
	domain.OrderStatusCompleted: {},
	domain.OrderStatusCancelled: {},
}

var itemGraph = map[domain.ItemStatus][]domain.ItemStatus{
	domain.ItemStatusPending:   {domain.ItemStatusPreparing},
	domain.ItemStatusPreparing: {domain.ItemStatusReady},
	domain.ItemStatusReady:     {domain.ItemStatusServed},
	domain.ItemStatusServed:    {},
}

// orderEdges lists the edges each restricted role may take at order level.
// Roles absent from the map (MANAGER, OWNER) may take any edge; WAITER may
// take any forward edge but not cancellation.
var orderEdges = map[domain.Role]map[orderEdge]bool{
	domain.RoleCook: {
		{domain.OrderStatusConfirmed, domain.OrderStatusCooking}: true,
	},
	domain.RoleStaff: {
		{domain.OrderStatusCooking, domain.OrderStatusCheckout}: true,
	},
}

var itemEdges = map[domain.Role]map[itemEdge]bool{
	domain.RoleCook: {
		{domain.ItemStatusPending, domain.ItemStatusPreparing}: true,
		{domain.ItemStatusPreparing, domain.ItemStatusReady}:   true,
	},
	domain.RoleStaff: {
		{domain.ItemStatusReady, domain.ItemStatusServed}: true,
	},
}

// DecideOrder authorizes an order-level transition. It returns nil when the
// edge exists in the graph and the role's row permits it. The error types are
// deliberately distinct: NoOp for requested == current, Forbidden for a role
// violation, InvalidTransition for a graph violation. Role restrictions are
// checked before graph shape, so a restricted role is always denied with
// Forbidden even when its request also skips states; only roles cleared for
// the edge fall through to the graph check.
func DecideOrder(current, requested domain.OrderStatus, role domain.Role) error {
	if requested == current {
		return apperrors.NewNoOpError(fmt.Sprintf("order is already %s", current))
	}

	switch role {
	case domain.RoleManager, domain.RoleOwner:
	case domain.RoleWaiter:
		if requested == domain.OrderStatusCancelled {
			return apperrors.NewForbiddenError("only managers and owners may cancel orders")
		}
	case domain.RoleCook, domain.RoleStaff:
		// The role's edges are all graph edges, so a permitted request
		// needs no further graph check.
		if orderEdges[role][orderEdge{current, requested}] {
			return nil
		}
		return apperrors.NewForbiddenError(
			fmt.Sprintf("role %s may not transition order from %s to %s", role, current, requested),
		)
	default:
		return apperrors.NewForbiddenError(fmt.Sprintf("unknown role %s", role))
	}

	if !edgeInOrderGraph(current, requested) {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot transition order from %s to %s", current, requested),
		)
	}

	return nil
}

// DecideItem authorizes an item-level transition with the same contract and
// check ordering as DecideOrder.
func DecideItem(current, requested domain.ItemStatus, role domain.Role) error {
	if requested == current {
		return apperrors.NewNoOpError(fmt.Sprintf("item is already %s", current))
	}

	switch role {
	case domain.RoleManager, domain.RoleOwner, domain.RoleWaiter:
	case domain.RoleCook, domain.RoleStaff:
		if itemEdges[role][itemEdge{current, requested}] {
			return nil
		}
		return apperrors.NewForbiddenError(
			fmt.Sprintf("role %s may not transition item from %s to %s", role, current, requested),
		)
	default:
		return apperrors.NewForbiddenError(fmt.Sprintf("unknown role %s", role))
	}

	if !edgeInItemGraph(current, requested) {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot transition item from %s to %s", current, requested),
		)
	}

	return nil
}

func edgeInOrderGraph(from, to domain.OrderStatus) bool {
	for _, next := range orderGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

func edgeInItemGraph(from, to domain.ItemStatus) bool {
	for _, next := range itemGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}
