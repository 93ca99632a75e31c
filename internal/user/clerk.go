package user

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
)

// ClerkWebhookEvent is the envelope Clerk posts to /webhooks/clerk.
type ClerkWebhookEvent struct {
	Object string          `json:"object"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Verification struct {
		Status string `json:"status"`
	} `json:"verification"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	Username              string              `json:"username"`
	ImageURL              string              `json:"image_url"`
	ProfileImageURL       string              `json:"profile_image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// PrimaryEmail returns the primary address, or the first one listed.
func (d *ClerkUserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ToCreateRequest maps webhook data onto a local user, deriving a username
// from the name, then the email, then the Clerk id when Clerk has none.
// Phone-only sign-ups carry no email.
func (d *ClerkUserData) ToCreateRequest() *CreateUserRequest {
	email := d.PrimaryEmail()

	username := d.Username
	if username == "" {
		username = d.FirstName + d.LastName
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		local, _, _ := strings.Cut(email, "@")
		username = local
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		username = d.ID
	}
	username = truncateRunes(username, maxUsernameLen)

	imageURL := d.ImageURL
	if imageURL == "" {
		imageURL = d.ProfileImageURL
	}

	return &CreateUserRequest{
		ClerkID:   d.ID,
		Email:     email,
		Username:  username,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		ImageURL:  imageURL,
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
