package mailer

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent    []*gomail.Message
	failFor string // fail sends addressed to this recipient
}

func (f *fakeSender) DialAndSend(msgs ...*gomail.Message) error {
	for _, m := range msgs {
		to := m.GetHeader("To")
		if f.failFor != "" && len(to) > 0 && to[0] == f.failFor {
			return errors.New("smtp rejected")
		}
		f.sent = append(f.sent, m)
	}
	return nil
}

type noBlobs struct{}

func (noBlobs) Open(string) (io.ReadCloser, error) { return nil, errors.New("no such blob") }

func newTestMailer(sender Sender) *Mailer {
	return &Mailer{
		sender:  sender,
		files:   noBlobs{},
		from:    "noreply@mumbai-tech.com",
		adminTo: "sales@mumbai-tech.com",
		timeout: time.Second,
		sem:     make(chan struct{}, 1),
	}
}

func sampleEnquiry() models.Enquiry {
	return models.Enquiry{
		Name:            "Acme Corp",
		Email:           "buyer@acme.com",
		Phone:           "9998887777",
		Country:         "India",
		Quantity:        5,
		QuantityUnit:    "pieces",
		DeliveryUrgency: "standard",
		Message:         "Need 5 units",
		Status:          models.EnquiryNew,
	}
}

func TestNotifyEnquirySendsStaffAndConfirmationMessages(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)

	m.NotifyEnquiry("abc123", sampleEnquiry(), "Hydraulic Pump")

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.sent))
	}
	if to := sender.sent[0].GetHeader("To"); to[0] != "sales@mumbai-tech.com" {
		t.Errorf("staff message addressed to %q", to[0])
	}
	if to := sender.sent[1].GetHeader("To"); to[0] != "buyer@acme.com" {
		t.Errorf("confirmation addressed to %q", to[0])
	}
}

func TestNotifyEnquiryStaffFailureDoesNotStopConfirmation(t *testing.T) {
	sender := &fakeSender{failFor: "sales@mumbai-tech.com"}
	m := newTestMailer(sender)

	// Must not panic or propagate the staff-side failure.
	m.NotifyEnquiry("abc123", sampleEnquiry(), "")

	if len(sender.sent) != 1 {
		t.Fatalf("expected the confirmation to still be sent, got %d messages", len(sender.sent))
	}
	if to := sender.sent[0].GetHeader("To"); to[0] != "buyer@acme.com" {
		t.Errorf("surviving message addressed to %q", to[0])
	}
}

func TestStaffBodyCarriesAllFieldsAndReference(t *testing.T) {
	body := staffBody("abc123", sampleEnquiry(), "Hydraulic Pump")

	for _, want := range []string{
		"Name: Acme Corp",
		"Email: buyer@acme.com",
		"Phone: 9998887777",
		"Country: India",
		"Quantity: 5 pieces",
		"Delivery: standard",
		"Need 5 units",
		"Product: Hydraulic Pump",
		"Reference: abc123",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("staff body missing %q:\n%s", want, body)
		}
	}
}

func TestStaffBodyDefaultsToGeneralEnquiry(t *testing.T) {
	body := staffBody("abc123", sampleEnquiry(), "")
	if !strings.Contains(body, "Product: General Enquiry") {
		t.Errorf("expected general enquiry marker:\n%s", body)
	}
}

func TestConfirmationBodyReferencesEnquiryID(t *testing.T) {
	body := confirmationBody("abc123", sampleEnquiry())
	if !strings.Contains(body, "abc123") {
		t.Errorf("confirmation missing reference id:\n%s", body)
	}
	if !strings.Contains(body, "Dear Acme Corp") {
		t.Errorf("confirmation missing salutation:\n%s", body)
	}
}

type hangingSender struct{}

func (hangingSender) DialAndSend(...*gomail.Message) error {
	select {} // never returns
}

func TestSendTimesOutAgainstHungTransport(t *testing.T) {
	m := newTestMailer(hangingSender{})
	m.timeout = 20 * time.Millisecond

	msg := gomail.NewMessage()
	msg.SetHeader("To", "anyone@example.com")

	start := time.Now()
	err := m.send(msg)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("send blocked past its timeout")
	}
}
