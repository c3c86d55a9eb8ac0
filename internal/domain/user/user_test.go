package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, id string, roles ...Role) *User {
	t.Helper()
	u, err := NewUser(CreateParams{
		ID:           ID(id),
		Email:        id + "@example.com",
		Name:         id,
		PasswordHash: "hash",
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return u
}

func TestNewUserRejectsUnknownRole(t *testing.T) {
	_, err := NewUser(CreateParams{
		ID:           "u1",
		Email:        "u1@example.com",
		Name:         "u1",
		PasswordHash: "hash",
		Roles:        []Role{"superuser"},
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestEnsureRoleIsIdempotent(t *testing.T) {
	u := newTestUser(t, "u1", RoleCustomer)
	require.NoError(t, u.EnsureRole(RoleHost, time.Now()))
	require.NoError(t, u.EnsureRole(RoleHost, time.Now()))
	require.Equal(t, []Role{RoleCustomer, RoleHost}, u.Roles)

	require.ErrorIs(t, u.EnsureRole("owner", time.Now()), ErrInvalidRole)
}

func TestCanCreateEstimate(t *testing.T) {
	require.False(t, newTestUser(t, "g", RoleGuest).CanCreateEstimate())
	require.True(t, newTestUser(t, "c", RoleCustomer).CanCreateEstimate())
	require.True(t, newTestUser(t, "h", RoleHost).CanCreateEstimate())
	require.True(t, newTestUser(t, "a", RoleAdmin).CanCreateEstimate())
}

func TestCanManageProperty(t *testing.T) {
	host := newTestUser(t, "host-1", RoleHost)
	require.True(t, host.CanManageProperty("host-1"))
	require.False(t, host.CanManageProperty("host-2"))

	admin := newTestUser(t, "admin-1", RoleAdmin)
	require.True(t, admin.CanManageProperty("host-2"))

	customer := newTestUser(t, "cust-1", RoleCustomer)
	require.False(t, customer.CanManageProperty("cust-1"))
}

func TestCanReadBooking(t *testing.T) {
	customer := newTestUser(t, "cust-1", RoleCustomer)
	require.True(t, customer.CanReadBooking("cust-1", "host-1", nil))
	require.False(t, customer.CanReadBooking("cust-2", "host-1", nil))

	guest := newTestUser(t, "friend", RoleCustomer)
	require.True(t, guest.CanReadBooking("cust-2", "host-1", []string{"friend"}))

	host := newTestUser(t, "host-1", RoleHost)
	require.True(t, host.CanReadBooking("cust-2", "host-1", nil))
}
