// services/email_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"crmaize-backend/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService delivers campaign email through SendGrid. Without an API key it
// reports itself unconfigured and only logs what it would have sent.
type EmailService struct {
	fromEmail string
	fromName  string
	apiKey    string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("MAIL_FROM_ADDRESS")
	if fromEmail == "" {
		fromEmail = "noreply@crmaize.local"
	}
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "CRMAIze"
	}

	if apiKey == "" {
		log.Println("Email service in console-only mode (set SENDGRID_API_KEY to enable sending)")
	}

	return &EmailService{
		fromEmail: fromEmail,
		fromName:  fromName,
		apiKey:    apiKey,
	}
}

func (s *EmailService) IsConfigured() bool {
	return s.apiKey != ""
}

// SendCampaignEmail personalizes the subject and body for the customer and
// attempts delivery. The bool mirrors the transport's accept/reject outcome;
// the error is reserved for transport-level failures.
func (s *EmailService) SendCampaignEmail(to, subject, body string, customer models.Customer) (bool, error) {
	personalizedSubject := s.personalizeSubject(subject, customer)
	personalizedBody := s.personalizeBody(body, customer)

	if !s.IsConfigured() {
		log.Printf("Email service not configured. Cannot send email to: %s", to)
		return false, nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(customer.FirstName, to)
	html := strings.ReplaceAll(personalizedBody, "\n", "<br>")
	message := mail.NewSingleEmail(from, personalizedSubject, recipient, personalizedBody, html)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return false, fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("SendGrid returned status %d for %s: %s", response.StatusCode, to, response.Body)
		return false, nil
	}

	return true, nil
}

func (s *EmailService) personalizeBody(body string, customer models.Customer) string {
	name := customer.FirstName
	if name == "" {
		name = "Valued Customer"
	}
	segment := customer.Segment
	if segment == "" {
		segment = models.SegmentLoyal
	}

	replacer := strings.NewReplacer(
		"{{customer_name}}", name,
		"{{customer_email}}", customer.Email,
		"{{customer_segment}}", segment,
		"{{total_spent}}", fmt.Sprintf("%.2f", customer.TotalSpent),
		"{{order_count}}", strconv.Itoa(customer.OrderCount),
	)
	return replacer.Replace(body)
}

func (s *EmailService) personalizeSubject(subject string, customer models.Customer) string {
	name := customer.FirstName
	if name == "" {
		name = "Valued Customer"
	}
	segment := customer.Segment
	if segment == "" {
		segment = models.SegmentLoyal
	}

	replacer := strings.NewReplacer(
		"{{customer_name}}", name,
		"{{customer_segment}}", segment,
	)
	return replacer.Replace(subject)
}

// ConfigurationStatus reports the transport settings for the settings page.
// The API key itself is never echoed back.
func (s *EmailService) ConfigurationStatus() map[string]interface{} {
	return map[string]interface{}{
		"configured":   s.IsConfigured(),
		"from_address": s.fromEmail,
		"from_name":    s.fromName,
	}
}
