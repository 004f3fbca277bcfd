package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"grabyourtickets/internal/models"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var ErrMailDisabled = errors.New("mail transport is not configured")

// Message is a rendered email ready to be handed to a Sender.
type Message struct {
	To      string
	Subject string
	HTML    string
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Your booking is confirmed</h2>
  <p>Hi {{.UserName}},</p>
  <p>Thanks for booking with GrabYourTickets. Here are your ticket details.</p>
  <table cellpadding="6">
    <tr><td><b>Booking ID</b></td><td>{{.BookingID}}</td></tr>
    <tr><td><b>Movie</b></td><td>{{.MovieTitle}}</td></tr>
    <tr><td><b>Cinema</b></td><td>{{.CinemaName}}{{if .CinemaLocation}}, {{.CinemaLocation}}{{end}}</td></tr>
    {{if .HallName}}<tr><td><b>Hall</b></td><td>{{.HallName}}</td></tr>{{end}}
    <tr><td><b>Date</b></td><td>{{.ShowDate}} {{.ShowTime}}</td></tr>
    <tr><td><b>Seats</b></td><td>{{.Seats}}</td></tr>
    <tr><td><b>Total</b></td><td>{{.TotalAmount}}</td></tr>
  </table>
  <p>Please show this email at the entrance.</p>
</body>
</html>
`))

type ticketView struct {
	models.BookingConfirmedEvent
	Seats string
}

// RenderTicket builds the confirmation email for a booking.
func RenderTicket(event models.BookingConfirmedEvent) (Message, error) {
	if event.UserEmail == "" {
		return Message{}, errors.New("booking event has no recipient email")
	}

	var buf bytes.Buffer
	view := ticketView{BookingConfirmedEvent: event, Seats: strings.Join(event.SeatLabels, ", ")}
	if err := ticketTemplate.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("failed to render ticket email: %w", err)
	}

	subject := "Your tickets"
	if event.MovieTitle != "" {
		subject = "Your tickets for " + event.MovieTitle
	}

	return Message{To: event.UserEmail, Subject: subject, HTML: buf.String()}, nil
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	cfg      Config
	sendMail sendMailFunc
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" {
		return ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.sendMail(addr, auth, s.cfg.From, []string{msg.To}, buildMIME(s.cfg.From, msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	slog.Info("Ticket email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
