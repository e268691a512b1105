package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string
	Role      Role
	Phone     *string
	Address   Address
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

type UpdateProfileParams struct {
	UserID  uint
	Name    *string
	Phone   *string
	Address *Address
}
