package user

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrackerAPI/internal/validation"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Smith", (&User{FirstName: "Jane", LastName: "Smith", Username: "js"}).DisplayName())
	assert.Equal(t, "Jane", (&User{FirstName: "Jane", Username: "js"}).DisplayName())
	assert.Equal(t, "Smith", (&User{LastName: "Smith"}).DisplayName())
	assert.Equal(t, "js", (&User{Username: "js"}).DisplayName())
}

func TestClerkUserDataToCreateRequest(t *testing.T) {
	payload := []byte(`{
		"id": "user_123",
		"first_name": "Test",
		"last_name": "User",
		"primary_email_address_id": "email_2",
		"email_addresses": [
			{"id": "email_1", "email_address": "old@example.com"},
			{"id": "email_2", "email_address": "test.user@example.com", "verification": {"status": "verified"}}
		],
		"profile_image_url": "https://example.com/image.jpg"
	}`)

	var data ClerkUserData
	require.NoError(t, json.Unmarshal(payload, &data))

	req := data.ToCreateRequest()

	assert.Equal(t, "user_123", req.ClerkID)
	assert.Equal(t, "test.user@example.com", req.Email)
	assert.Equal(t, "TestUser", req.Username)
	assert.Equal(t, "https://example.com/image.jpg", req.ImageURL)
}

func TestPrimaryEmailFallback(t *testing.T) {
	data := ClerkUserData{EmailAddresses: []ClerkEmailAddress{{ID: "a", EmailAddress: "first@example.com"}}}
	assert.Equal(t, "first@example.com", data.PrimaryEmail())

	assert.Equal(t, "", (&ClerkUserData{}).PrimaryEmail())
}

func TestToCreateRequestUsernameFromEmail(t *testing.T) {
	data := ClerkUserData{
		ID:             "user_9",
		FirstName:      "A",
		EmailAddresses: []ClerkEmailAddress{{ID: "e", EmailAddress: "ann.lee@example.com"}},
	}

	assert.Equal(t, "ann.lee", data.ToCreateRequest().Username)
}

func TestToCreateRequestAlwaysValid(t *testing.T) {
	tests := []struct {
		name     string
		data     ClerkUserData
		username string
		email    string
	}{
		{
			name:     "short email local part",
			data:     ClerkUserData{ID: "user_2abcDEF", EmailAddresses: []ClerkEmailAddress{{ID: "e", EmailAddress: "jo@example.com"}}},
			username: "user_2abcDEF",
			email:    "jo@example.com",
		},
		{
			name:     "phone only",
			data:     ClerkUserData{ID: "user_phone1"},
			username: "user_phone1",
		},
		{
			name:     "multibyte name",
			data:     ClerkUserData{ID: "user_x", FirstName: "a" + strings.Repeat("É", 40)},
			username: "a" + strings.Repeat("É", 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.data.ToCreateRequest()

			assert.Equal(t, tt.username, req.Username)
			assert.Equal(t, tt.email, req.Email)
			assert.True(t, utf8.ValidString(req.Username))
			assert.NoError(t, validation.Struct(req))
		})
	}
}
