// Package mailer delivers enquiry notifications off the request path. Every
// send is best effort: failures are logged and swallowed, never surfaced to
// the submitting request.
package mailer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/config"
	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"gopkg.in/gomail.v2"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// BlobOpener re-reads stored attachments; satisfied by *storage.FileStore.
type BlobOpener interface {
	Open(name string) (io.ReadCloser, error)
}

type Mailer struct {
	sender  Sender
	files   BlobOpener
	from    string
	adminTo string
	timeout time.Duration

	// Bounds the number of outstanding notification sends so a slow SMTP
	// server cannot pile up goroutines without limit.
	sem chan struct{}
}

func New(cfg config.MailConfig, files BlobOpener) *Mailer {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Mailer{
		sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		files:   files,
		from:    cfg.From,
		adminTo: cfg.Admin,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrent),
	}
}

// NotifyEnquiry composes and sends the two enquiry messages: the internal
// staff notification with attachments embedded, and the confirmation back to
// the submitter. The sends are independent; a staff-side failure never stops
// the confirmation. Intended to run on its own goroutine.
func (m *Mailer) NotifyEnquiry(enquiryID string, e models.Enquiry, productName string) {
	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	staff := gomail.NewMessage()
	staff.SetHeader("From", m.from)
	staff.SetHeader("To", m.adminTo)
	staff.SetHeader("Subject", "New Product Enquiry - MUMBAI-TECH")
	staff.SetBody("text/plain", staffBody(enquiryID, e, productName))
	m.attach(staff, e.Attachments)

	if err := m.send(staff); err != nil {
		slog.Error("Failed to send staff enquiry notification",
			"enquiry_id", enquiryID, "error", err)
	}

	confirm := gomail.NewMessage()
	confirm.SetHeader("From", m.from)
	confirm.SetHeader("To", e.Email)
	confirm.SetHeader("Subject", "We received your enquiry - MUMBAI-TECH")
	confirm.SetBody("text/plain", confirmationBody(enquiryID, e))

	if err := m.send(confirm); err != nil {
		slog.Error("Failed to send enquiry confirmation",
			"enquiry_id", enquiryID, "to", e.Email, "error", err)
	}
}

// NotifyStaleEnquiries mails the staff mailbox a digest of enquiries that are
// still sitting in status "new".
func (m *Mailer) NotifyStaleEnquiries(enquiries []models.Enquiry) {
	if len(enquiries) == 0 {
		return
	}
	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.adminTo)
	msg.SetHeader("Subject", fmt.Sprintf("%d enquiries awaiting contact - MUMBAI-TECH", len(enquiries)))
	msg.SetBody("text/plain", digestBody(enquiries))

	if err := m.send(msg); err != nil {
		slog.Error("Failed to send stale enquiry digest", "count", len(enquiries), "error", err)
	}
}

// send runs the dial on its own goroutine so a hung SMTP conversation cannot
// hold the caller past the timeout.
func (m *Mailer) send(msg *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- m.sender.DialAndSend(msg)
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(m.timeout):
		return fmt.Errorf("mail send timed out after %s", m.timeout)
	}
}

func (m *Mailer) attach(msg *gomail.Message, names []string) {
	for _, name := range names {
		name := name
		msg.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			rc, err := m.files.Open(name)
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(w, rc)
			return err
		}))
	}
}

func staffBody(id string, e models.Enquiry, productName string) string {
	if productName == "" {
		productName = "General Enquiry"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "New Enquiry Received:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", e.Name)
	fmt.Fprintf(&b, "Email: %s\n", e.Email)
	fmt.Fprintf(&b, "Phone: %s\n", e.Phone)
	fmt.Fprintf(&b, "Company: %s\n", e.Company)
	fmt.Fprintf(&b, "Country: %s\n", e.Country)
	fmt.Fprintf(&b, "Industry: %s\n", e.Industry)
	fmt.Fprintf(&b, "Quantity: %d %s\n", e.Quantity, e.QuantityUnit)
	fmt.Fprintf(&b, "Delivery: %s\n\n", e.DeliveryUrgency)
	fmt.Fprintf(&b, "Message:\n%s\n\n", e.Message)
	fmt.Fprintf(&b, "Product: %s\n", productName)
	fmt.Fprintf(&b, "Reference: %s\n", id)
	return b.String()
}

func confirmationBody(id string, e models.Enquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", e.Name)
	fmt.Fprintf(&b, "Thank you for your enquiry. Our team will contact you shortly.\n\n")
	fmt.Fprintf(&b, "Your enquiry reference: %s\n\n", id)
	fmt.Fprintf(&b, "Best regards,\nMUMBAI-TECH Team\n")
	return b.String()
}

func digestBody(enquiries []models.Enquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following enquiries are still marked as new:\n\n")
	for _, e := range enquiries {
		fmt.Fprintf(&b, "- %s <%s> (%s), received %s\n",
			e.Name, e.Email, e.Country, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}
