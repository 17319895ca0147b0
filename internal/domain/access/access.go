// Package access holds every capability check of the marketplace core.
//
// All predicates are pure and fail closed: a nil user, linking, order or
// complaint always yields false. Suspended users are denied everything.
package access

import "tradelink/internal/domain"

func usable(u *domain.User) bool {
	return u != nil && u.Status != domain.UserSuspended
}

// CanAccessLinkingChat: the linking is accepted and the user either
// requested it or is its assigned salesman.
func CanAccessLinkingChat(u *domain.User, l *domain.Linking) bool {
	if !usable(u) || l == nil || !l.IsAccepted() {
		return false
	}
	return l.RequestedByUserID == u.ID || l.HasSalesman(u.ID)
}

// CanAccessOrderChat: the consumer staff who placed the order, the linking's
// assigned salesman, or a supplier-side manager/owner.
func CanAccessOrderChat(u *domain.User, o *domain.Order, l *domain.Linking) bool {
	if !usable(u) || o == nil || l == nil || o.LinkingID != l.ID {
		return false
	}
	if o.ConsumerStaffID == u.ID || l.HasSalesman(u.ID) {
		return true
	}
	return u.IsManagerOrOwner() && u.CompanyID == l.SupplierCompanyID
}

// CanAccessComplaint covers the order creator, the assigned salesman, the
// claiming manager, owners of either company, and supplier managers while
// the complaint waits in the escalated pool.
func CanAccessComplaint(u *domain.User, c *domain.Complaint, o *domain.Order, l *domain.Linking) bool {
	if !usable(u) || c == nil || o == nil || l == nil {
		return false
	}
	if c.OrderID != o.ID || o.LinkingID != l.ID {
		return false
	}
	switch {
	case o.ConsumerStaffID == u.ID:
		return true
	case c.AssignedSalesmanID == u.ID:
		return true
	case c.ClaimedBy(u.ID):
		return true
	case u.Role == domain.RoleOwner && l.Involves(u.CompanyID):
		return true
	case u.Role == domain.RoleManager && c.Status == domain.ComplaintEscalated && u.CompanyID == l.SupplierCompanyID:
		return true
	}
	return false
}

// CanViewLinking: either company of the linking.
func CanViewLinking(u *domain.User, l *domain.Linking) bool {
	return usable(u) && l != nil && l.Involves(u.CompanyID)
}

// CanRespondToLinking: any user of the supplier company.
func CanRespondToLinking(u *domain.User, l *domain.Linking) bool {
	return usable(u) && l != nil && u.CompanyID == l.SupplierCompanyID
}

// CanPlaceOrder: a consumer-company user under an accepted linking.
func CanPlaceOrder(u *domain.User, l *domain.Linking) bool {
	return usable(u) && l != nil && l.IsAccepted() && u.CompanyID == l.ConsumerCompanyID
}

// CanViewOrder: users of either company of the order's linking.
func CanViewOrder(u *domain.User, o *domain.Order, l *domain.Linking) bool {
	if o == nil || l == nil || o.LinkingID != l.ID {
		return false
	}
	return CanViewLinking(u, l)
}

// CanChangeOrderStatus: only users of the linking's supplier company.
func CanChangeOrderStatus(u *domain.User, o *domain.Order, l *domain.Linking) bool {
	if !usable(u) || o == nil || l == nil || o.LinkingID != l.ID {
		return false
	}
	return u.CompanyID == l.SupplierCompanyID
}

// CanFileComplaint: only the consumer staff who placed the order.
func CanFileComplaint(u *domain.User, o *domain.Order) bool {
	return usable(u) && o != nil && o.ConsumerStaffID == u.ID
}

// CanClaimComplaint: a manager or owner of the supplier company.
func CanClaimComplaint(u *domain.User, l *domain.Linking) bool {
	return usable(u) && l != nil && u.IsManagerOrOwner() && u.CompanyID == l.SupplierCompanyID
}

// MayCancelOrder reports whether the actor's role allows rejecting the order
// as part of a complaint resolution.
func MayCancelOrder(u *domain.User) bool {
	return usable(u) && u.IsManagerOrOwner()
}
