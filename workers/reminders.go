package workers

import (
	"fmt"
	"log"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/shelfwise/library/backend/library"
)

// Reminder scans unreturned loans on an interval and emails users whose
// books are overdue or due within the next day. Users without an email on
// file are skipped.
type Reminder struct {
	Library  *library.Store
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
	Interval time.Duration
}

// Start launches the reminder loop. A check runs immediately, then on every
// tick until stop is closed.
func (n *Reminder) Start(stop <-chan struct{}) {
	interval := n.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		n.Check()
		for {
			select {
			case <-ticker.C:
				n.Check()
			case <-stop:
				return
			}
		}
	}()
}

// Check sends one reminder pass.
func (n *Reminder) Check() {
	log.Println("reminder: checking for overdue and due-soon loans")
	now := time.Now()
	for _, rec := range n.Library.ActiveBorrows() {
		user := n.Library.UserByID(rec.UserID)
		if user == nil || user.Email == "" {
			continue
		}
		title := "your borrowed book"
		if book := n.Library.BookByID(rec.BookID); book != nil {
			title = book.Title
		}

		var subject, body string
		switch {
		case now.After(rec.DueDate):
			fine := n.Library.OutstandingFine(rec)
			subject = "Overdue: " + title
			body = fmt.Sprintf("%q was due on %s. Your fine so far is %d. Please return it soon.",
				title, rec.DueDate.Format("02 Jan 2006"), fine)
		case rec.DueDate.Sub(now) < 24*time.Hour:
			subject = "Due tomorrow: " + title
			body = fmt.Sprintf("%q is due on %s. Return or renew it to avoid a fine.",
				title, rec.DueDate.Format("02 Jan 2006"))
		default:
			continue
		}
		if err := n.send(user.Email, subject, body); err != nil {
			log.Printf("reminder: send to %s: %v", user.Email, err)
		}
	}
}

func (n *Reminder) send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(n.SMTPHost, n.SMTPPort, n.SMTPUser, n.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return d.DialAndSend(m)
}
