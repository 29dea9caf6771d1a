package types

type User struct {
	ID        string   `json:"id" db:"id"`
	Appid     string   `json:"appid" db:"appid"`
	Name      string   `json:"name" db:"name"`
	Email     string   `json:"email" db:"email"`
	Password  string   `json:"-" db:"password"`
	Salt      string   `json:"-" db:"salt"`
	Role      UserRole `json:"role" db:"role"`
	UpdatedAt int64    `json:"updated_at" db:"updated_at"`
	CreatedAt int64    `json:"created_at" db:"created_at"`
}

type UserRole string

const (
	USER_ROLE_MEMBER UserRole = "member"
	USER_ROLE_ADMIN  UserRole = "admin"
)
