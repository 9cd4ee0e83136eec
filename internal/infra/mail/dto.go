package mail

import "gopkg.in/gomail.v2"

// Dialer is the part of *gomail.Dialer the sender needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	dialer Dialer
}

// smtpServices maps well-known provider names to their submission endpoints.
var smtpServices = map[string]struct {
	Host string
	Port int
}{
	"gmail":   {"smtp.gmail.com", 587},
	"outlook": {"smtp.office365.com", 587},
	"hotmail": {"smtp.office365.com", 587},
	"yahoo":   {"smtp.mail.yahoo.com", 587},
	"zoho":    {"smtp.zoho.com", 587},
}
