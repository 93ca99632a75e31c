package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerkId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// AdminUserRow is one line of the admin user table.
type AdminUserRow struct {
	ID          string    `json:"id"`
	ClerkID     string    `json:"clerkId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Status      Status    `json:"status"`
	JoinDate    time.Time `json:"joinDate"`
	HabitsCount int       `json:"habitsCount"`
}
