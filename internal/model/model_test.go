package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationStatus_UnitStatus(t *testing.T) {
	cases := []struct {
		in      ReservationStatus
		want    UnitStatus
		changes bool
	}{
		{ReservationReserved, "", false},
		{ReservationPaid, UnitReserved, true},
		{ReservationBooked, UnitBooked, true},
		{ReservationDeclined, UnitAvailable, true},
	}
	for _, tc := range cases {
		got, ok := tc.in.UnitStatus()
		assert.Equal(t, tc.changes, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@b.c", PasswordHash: "secret", Role: RoleAdmin})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"role":"admin"`)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleSupervisor.Valid())
	assert.False(t, Role("owner").Valid())
	assert.True(t, PaymentMortgage.Valid())
	assert.False(t, PaymentType("barter").Valid())
}
