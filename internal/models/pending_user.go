package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingUser status values. pending -> approved|rejected,
// approved -> pending (revoke), rejected -> pending (recover) or deleted.
const (
	UserPending  = "pending"
	UserApproved = "approved"
	UserRejected = "rejected"
)

// Organization account types eligible for registration.
const (
	UserTypeStudentGroup = "student-group"
	UserTypeFoodBank     = "food-bank"
)

func ValidUserType(t string) bool {
	return t == UserTypeStudentGroup || t == UserTypeFoodBank
}

// PendingUser is an organization registration awaiting staff approval.
// PasswordHash is empty until the registration is approved; revocation
// clears it again, which invalidates any credential-based login.
type PendingUser struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq          int64     `gorm:"not null;index" json:"-"`
	Email        string    `gorm:"size:255;not null;index" json:"email"`
	PhoneNumber  string    `gorm:"size:50" json:"phoneNumber"`
	Type         string    `gorm:"size:20;not null" json:"type"`
	Status       string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	PasswordHash string    `gorm:"size:100" json:"-"`

	// student-group registrations
	GroupName   string `gorm:"size:255" json:"groupName,omitempty"`
	College     string `gorm:"size:255" json:"college,omitempty"`
	MemberCount string `gorm:"size:50" json:"memberCount,omitempty"`

	// food-bank registrations
	BusinessName string `gorm:"size:255" json:"businessName,omitempty"`
	ManagerName  string `gorm:"size:255" json:"managerName,omitempty"`
	Location     string `gorm:"size:255" json:"location,omitempty"`
	Purpose      string `gorm:"type:text" json:"purpose,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PendingUser) TableName() string {
	return "pending_users"
}

// ContactName is the name the approval email greets: the group name for
// student groups, the manager's name for food banks.
func (u *PendingUser) ContactName() string {
	if u.Type == UserTypeStudentGroup {
		return u.GroupName
	}
	return u.ManagerName
}
