package verification_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/The-entrepreneur/reent/verification"
)

func TestValidateBVN(t *testing.T) {
	require.True(t, verification.ValidateBVN("12345678901"))

	require.False(t, verification.ValidateBVN("1234567890"))   // 10 digits
	require.False(t, verification.ValidateBVN("123456789012")) // 12 digits
	require.False(t, verification.ValidateBVN("1234567890a"))
	require.False(t, verification.ValidateBVN(""))
}

func TestValidateNIN(t *testing.T) {
	require.True(t, verification.ValidateNIN("98765432109"))
	require.False(t, verification.ValidateNIN("9876543210"))
	require.False(t, verification.ValidateNIN("98765 43210"))
}

func TestValidateDOB(t *testing.T) {
	require.True(t, verification.ValidateDOB("1990-01-15"))
	require.True(t, verification.ValidateDOB("2000-02-29")) // leap year

	require.False(t, verification.ValidateDOB("1990-13-01")) // no month 13
	require.False(t, verification.ValidateDOB("2001-02-29")) // not a leap year
	require.False(t, verification.ValidateDOB("15-01-1990"))
	require.False(t, verification.ValidateDOB("1990/01/15"))
	require.False(t, verification.ValidateDOB(""))
}
