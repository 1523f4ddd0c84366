package services

import (
	"fmt"

	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
)

// GenerateApprovalEmail prepares the welcome email for a newly approved
// organization. The content is rendered for operator preview only; nothing
// is sent.
func GenerateApprovalEmail(user *models.PendingUser, password string) *dto.EmailContent {
	body := fmt.Sprintf(`Hello %s,

Your request for the Mammoth ReServe app was accepted. You are now eligible to reserve food donations, and pick them up following the donor instructions.

Here is your contact information:

email: %s
password: %s

We are pleased to help your food needs and our community!

Mammoth ReServe Team`, user.ContactName(), user.Email, password)

	return &dto.EmailContent{
		To:      user.Email,
		Subject: "Your Mammoth ReServe Account is Approved!",
		Body:    body,
	}
}
