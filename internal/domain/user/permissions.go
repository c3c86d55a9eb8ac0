package user

// Permission checks are explicit per operation rather than scattered
// role-array membership tests.

// CanCreateEstimate gates quote and booking creation: guests browse only.
func (u *User) CanCreateEstimate() bool {
	return u.HasRole(RoleCustomer) || u.HasRole(RoleHost) || u.HasRole(RoleAdmin)
}

// CanManageProperty allows hosts to manage their own listings and admins any.
func (u *User) CanManageProperty(hostID string) bool {
	if u.HasRole(RoleAdmin) {
		return true
	}
	return u.HasRole(RoleHost) && string(u.ID) == hostID
}

// CanCreateDirectBooking allows hosts and admins to create bookings without
// going through the estimate flow.
func (u *User) CanCreateDirectBooking() bool {
	return u.HasRole(RoleHost) || u.HasRole(RoleAdmin)
}

// CanDeleteBooking: the owning host, or an admin.
func (u *User) CanDeleteBooking(propertyHostID string) bool {
	if u.HasRole(RoleAdmin) {
		return true
	}
	return u.HasRole(RoleHost) && string(u.ID) == propertyHostID
}

// CanReadBooking: the booking customer, an invited guest, the property host,
// or an admin.
func (u *User) CanReadBooking(customerID, propertyHostID string, guests []string) bool {
	id := string(u.ID)
	if u.HasRole(RoleAdmin) || id == customerID || id == propertyHostID {
		return true
	}
	for _, g := range guests {
		if g == id {
			return true
		}
	}
	return false
}
