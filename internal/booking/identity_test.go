package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingReferenceFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := NewBookingReference()
		require.NoError(t, err)
		assert.Regexp(t, `^BK-[0-9A-F]{10}$`, ref)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestNewTicketNumberFormat(t *testing.T) {
	ref, err := NewBookingReference()
	require.NoError(t, err)

	n1, err := NewTicketNumber(ref, 1)
	require.NoError(t, err)
	n2, err := NewTicketNumber(ref, 2)
	require.NoError(t, err)

	suffix := strings.TrimPrefix(ref, "BK-")
	assert.Regexp(t, `^TKT-`+suffix+`-001-[0-9A-F]{10}$`, n1)
	assert.Regexp(t, `^TKT-`+suffix+`-002-[0-9A-F]{10}$`, n2)
	assert.NotEqual(t, n1, n2)
}

func TestQRPayloadRoundTrip(t *testing.T) {
	const secret = "door-scanner-secret"
	payload := QRPayload(secret, "TKT-ABCDEF1234-001-FFFFFFFFFF", "BK-ABCDEF1234")

	parts := strings.Split(payload, ".")
	require.Len(t, parts, 4)
	assert.Equal(t, "ST1", parts[0])
	assert.Len(t, parts[3], 16)

	number, ref, ok := VerifyQRPayload(secret, payload)
	require.True(t, ok)
	assert.Equal(t, "TKT-ABCDEF1234-001-FFFFFFFFFF", number)
	assert.Equal(t, "BK-ABCDEF1234", ref)
}

func TestVerifyQRPayloadRejections(t *testing.T) {
	const secret = "door-scanner-secret"
	payload := QRPayload(secret, "TKT-ABCDEF1234-001-FFFFFFFFFF", "BK-ABCDEF1234")

	cases := []struct {
		name    string
		secret  string
		payload string
	}{
		{"wrong secret", "different-secret", payload},
		{"tampered ticket number", secret, strings.Replace(payload, "001", "002", 1)},
		{"wrong version", secret, "ST2" + strings.TrimPrefix(payload, "ST1")},
		{"truncated", secret, payload[:len(payload)-5]},
		{"garbage", secret, "not-a-payload"},
		{"empty", secret, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := VerifyQRPayload(tc.secret, tc.payload)
			assert.False(t, ok)
		})
	}
}
