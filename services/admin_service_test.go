package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestActiveSinceUsesAppTimezone(t *testing.T) {
	kiritimati, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)

	// Still the 13th in UTC, already the 14th at UTC+14.
	now := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"utc", time.UTC, "2023-12-14"},
		{"ahead of utc", kiritimati, "2023-12-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAdminService(nil, nil, tt.loc)
			svc.now = func() time.Time { return now }
			assert.Equal(t, tt.want, svc.activeSince())
		})
	}
}
