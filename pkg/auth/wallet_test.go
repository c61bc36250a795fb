package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "Mixed case is lowercased",
			input:    "0x1A2B3C4D5E6F7a8B9C0D1e2F3A4B5C6D7E8F9A0B",
			expected: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b",
		},
		{
			name:     "Surrounding whitespace is trimmed",
			input:    "  0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b ",
			expected: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b",
		},
		{name: "Missing prefix", input: "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", wantErr: true},
		{name: "Too short", input: "0x1a2b3c", wantErr: true},
		{name: "Non-hex characters", input: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9zzz", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, err := NormalizeAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, address)
		})
	}
}

func TestWalletAuth_TokenRoundTrip(t *testing.T) {
	a := NewWalletAuth("test-secret", time.Hour)

	token, err := a.IssueToken(42, "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	walletUser, err := a.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), walletUser.UserID)
	assert.Equal(t, "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", walletUser.Address)
}

func TestWalletAuth_RejectsForeignSignature(t *testing.T) {
	a := NewWalletAuth("test-secret", time.Hour)
	other := NewWalletAuth("other-secret", time.Hour)

	token, err := other.IssueToken(42, "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b")
	assert.NoError(t, err)

	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestWalletAuth_RejectsExpiredToken(t *testing.T) {
	a := NewWalletAuth("test-secret", -time.Minute)

	token, err := a.IssueToken(42, "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b")
	assert.NoError(t, err)

	_, err = a.ParseToken(token)
	assert.Error(t, err)
}
