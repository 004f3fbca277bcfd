package notification

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"grabyourtickets/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() models.BookingConfirmedEvent {
	return models.BookingConfirmedEvent{
		BookingID:      "b-1",
		UserName:       "Ann <script>",
		UserEmail:      "ann@example.com",
		MovieTitle:     "Dune",
		CinemaName:     "QFX",
		CinemaLocation: "Kathmandu",
		ShowDate:       "2026-01-02",
		ShowTime:       "18:00",
		SeatLabels:     []string{"B4", "B5"},
		TotalAmount:    400,
	}
}

func TestRenderTicket(t *testing.T) {
	msg, err := RenderTicket(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Your tickets for Dune", msg.Subject)
	assert.Contains(t, msg.HTML, "B4, B5")
	assert.Contains(t, msg.HTML, "QFX, Kathmandu")
	assert.Contains(t, msg.HTML, "400")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRenderTicketRequiresRecipient(t *testing.T) {
	event := sampleEvent()
	event.UserEmail = ""
	_, err := RenderTicket(event)
	assert.Error(t, err)
}

func TestSMTPSenderSend(t *testing.T) {
	s := NewSMTPSender(Config{Host: "mail.local", Port: 2525, From: "tickets@example.com"})

	var gotAddr string
	var gotTo []string
	var gotBody []byte
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, msg
		assert.Nil(t, a)
		return nil
	}

	err := s.Send(context.Background(), Message{To: "ann@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, string(gotBody), "Subject: Hi\r\n")
	assert.Contains(t, string(gotBody), "Content-Type: text/html")
}

func TestSMTPSenderErrors(t *testing.T) {
	err := NewSMTPSender(Config{}).Send(context.Background(), Message{To: "a@b.c"})
	assert.ErrorIs(t, err, ErrMailDisabled)

	s := NewSMTPSender(Config{Host: "mail.local", Port: 25})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	err = s.Send(context.Background(), Message{To: "a@b.c"})
	assert.ErrorContains(t, err, "refused")
}
