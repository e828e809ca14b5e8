package email

import (
	"fmt"
	"log"
)

// SendEmail logs the message instead of delivering it. Swapping in a real
// provider (SendGrid, SES) only needs to touch this function.
func SendEmail(to string, subject string, body string) error {
	log.Println("====================================================")
	log.Printf("--- OUTGOING EMAIL ---")
	log.Printf("To: %s", to)
	log.Printf("Subject: %s", subject)
	log.Println("--- Body ---")
	log.Println(body)
	log.Println("====================================================")

	return nil
}

// SendVerificationEmail sends the account activation code.
func SendVerificationEmail(to string, code string) error {
	subject := "Verify your HushHome account"

	body := fmt.Sprintf(
		"Welcome to HushHome!\n\nYour verification code is: %s\n\nThis code will expire in 15 minutes.",
		code,
	)

	return SendEmail(to, subject, body)
}
