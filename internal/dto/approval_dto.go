package dto

import "github.com/mammoth-reserve/reserve-backend/internal/models"

type RegisterRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Type        string `json:"type"`

	// student-group fields
	GroupName   string `json:"groupName,omitempty"`
	College     string `json:"college,omitempty"`
	MemberCount string `json:"memberCount,omitempty"`

	// food-bank fields
	BusinessName string `json:"businessName,omitempty"`
	ManagerName  string `json:"managerName,omitempty"`
	Location     string `json:"location,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
}

type ApproveRequest struct {
	Password string `json:"password"`
}

// EmailContent is the approval notification payload. It is rendered for
// operator preview only; nothing is ever sent.
type EmailContent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ApprovalResponse struct {
	User  *models.PendingUser `json:"user"`
	Email *EmailContent       `json:"email"`
}
