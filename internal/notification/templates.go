package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"nepalstay/internal/domain"
)

const dateLayout = "Jan 2, 2006"

var (
	confirmationTmpl = template.Must(template.New("confirm").Parse(`<h2>Booking Confirmed!</h2>
<p>Dear {{.Name}},</p>
<p>Your booking has been confirmed. Here are the details:</p>
<ul>
  <li><strong>Property:</strong> {{.Property}}</li>
  <li><strong>Check-in:</strong> {{.CheckIn}}</li>
  <li><strong>Check-out:</strong> {{.CheckOut}}</li>
  <li><strong>Guests:</strong> {{.Guests}}</li>
  <li><strong>Total Amount:</strong> NPR {{printf "%.2f" .Total}}</li>
  <li><strong>Payment Status:</strong> {{.PaymentStatus}}</li>
</ul>
<p>Thank you for choosing NepalStay!</p>`))

	cancellationTmpl = template.Must(template.New("cancel").Parse(`<h2>Booking Cancelled</h2>
<p>Dear {{.Name}},</p>
<p>Your booking has been cancelled. Here are the details:</p>
<ul>
  <li><strong>Property:</strong> {{.Property}}</li>
  <li><strong>Check-in:</strong> {{.CheckIn}}</li>
  <li><strong>Check-out:</strong> {{.CheckOut}}</li>
  <li><strong>Reason:</strong> {{.Reason}}</li>
</ul>
<p>If you have any questions, please contact our support team.</p>`))

	verificationTmpl = template.Must(template.New("verify").Parse(`<h2>Verification {{.Outcome}}</h2>
<p>Dear {{.Name}},</p>
<p>Your property owner account verification has been {{.Status}}.</p>
{{if .Approved}}<p>You can now start listing your properties on our platform.</p>{{else}}<p>Please contact support if you have any questions.</p>{{end}}`))
)

type bookingMailData struct {
	Name          string
	Property      string
	CheckIn       string
	CheckOut      string
	Guests        int
	Total         float64
	PaymentStatus domain.PaymentStatus
	Reason        string
}

func bookingData(b *domain.Booking) bookingMailData {
	d := bookingMailData{
		CheckIn:       b.CheckIn.Format(dateLayout),
		CheckOut:      b.CheckOut.Format(dateLayout),
		Guests:        b.Guests,
		Total:         b.TotalAmount,
		PaymentStatus: b.PaymentStatus,
		Reason:        b.CancellationReason,
	}
	if b.User != nil {
		d.Name = b.User.Name
	}
	if b.Property != nil {
		d.Property = b.Property.Name
	}
	if d.Reason == "" {
		d.Reason = "Cancelled by user"
	}
	return d
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

// recipient picks the booking contact email, falling back to the account.
func recipient(b *domain.Booking) (string, string) {
	contact := b.ContactInfo.Data()
	email, name := contact.Email, contact.Name
	if b.User != nil {
		if email == "" {
			email = b.User.Email
		}
		if name == "" {
			name = b.User.Name
		}
	}
	return email, name
}

func BookingConfirmationEmail(b *domain.Booking) Email {
	d := bookingData(b)
	to, name := recipient(b)
	return Email{
		ToEmail: to,
		ToName:  name,
		Subject: "Booking Confirmation - NepalStay",
		Text: fmt.Sprintf("Your booking at %s from %s to %s is confirmed. Total NPR %.2f.",
			d.Property, d.CheckIn, d.CheckOut, d.Total),
		HTML: render(confirmationTmpl, d),
	}
}

func BookingCancellationEmail(b *domain.Booking) Email {
	d := bookingData(b)
	to, name := recipient(b)
	return Email{
		ToEmail: to,
		ToName:  name,
		Subject: "Booking Cancelled - NepalStay",
		Text: fmt.Sprintf("Your booking at %s from %s to %s was cancelled: %s",
			d.Property, d.CheckIn, d.CheckOut, d.Reason),
		HTML: render(cancellationTmpl, d),
	}
}

func OwnerVerificationEmail(u *domain.User) Email {
	approved := u.VerificationStatus == domain.VerificationApproved
	outcome := "Rejected"
	if approved {
		outcome = "Approved"
	}
	return Email{
		ToEmail: u.Email,
		ToName:  u.Name,
		Subject: "Property Owner Verification " + outcome,
		Text:    fmt.Sprintf("Your property owner account verification has been %s.", u.VerificationStatus),
		HTML: render(verificationTmpl, map[string]any{
			"Outcome":  outcome,
			"Name":     u.Name,
			"Status":   string(u.VerificationStatus),
			"Approved": approved,
		}),
	}
}
