package model

// UserStatus represents user status
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Console roles. Viewers may read releases but not change or publish them.
const (
	RoleViewer    = "viewer"
	RoleEditor    = "editor"
	RolePublisher = "publisher"
)

// User is a release console account
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(32);default:'editor'" json:"role"`
	Status       UserStatus `gorm:"type:enum('active','inactive');default:'active'" json:"status"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// CanEdit reports whether the role may change release contents
func CanEdit(role string) bool {
	return role == RoleEditor || role == RolePublisher
}

// CanPublish reports whether the role may validate, publish or schedule
func CanPublish(role string) bool {
	return role == RolePublisher
}
