package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gamelib/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseConsoleID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseConsoleID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseGameID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseGameID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, GameID(validUUID), id)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE games;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConsoleID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIDsEncodeAsJSONStrings(t *testing.T) {
	consoleID := NewConsoleID()

	body, err := json.Marshal(struct {
		ConsoleID ConsoleID `json:"consoleId"`
	}{consoleID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"consoleId":"`+consoleID.String()+`"}`, string(body))

	var decoded struct {
		ConsoleID ConsoleID `json:"consoleId"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, consoleID, decoded.ConsoleID)

	err = json.Unmarshal([]byte(`{"consoleId":"nope"}`), &decoded)
	require.Error(t, err)
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errConsole := ParseConsoleID(validUUID)
		_, errGame := ParseGameID(validUUID)
		require.NoError(t, errConsole)
		require.NoError(t, errGame)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errConsole := ParseConsoleID(input)
			_, errGame := ParseGameID(input)
			require.Error(t, errConsole)
			require.Error(t, errGame)
		})
	}
}
