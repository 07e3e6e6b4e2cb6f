package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"vagalivre/internal/config"
	"vagalivre/internal/db"
	"vagalivre/internal/events"
	"vagalivre/internal/repository"
)

const timeFormat = "02 Jan 2006 15:04 MST"

// NotifyService is the notification collaborator. It subscribes to
// reservation events and sends email (SendGrid) and SMS (Twilio) to the
// interested party. Delivery failures are logged and never propagate:
// the state transition that triggered the event is authoritative.
type NotifyService struct {
	users    repository.UserStore
	spots    repository.SpotStore
	sendgrid config.SendGridConfig
	twilio   config.TwilioConfig
	log      zerolog.Logger
}

func NewNotifyService(users repository.UserStore, spots repository.SpotStore, sg config.SendGridConfig, tw config.TwilioConfig, log zerolog.Logger) *NotifyService {
	return &NotifyService{users: users, spots: spots, sendgrid: sg, twilio: tw, log: log}
}

// HandleEvent is the bus subscriber.
func (s *NotifyService) HandleEvent(e events.Event) {
	ctx := context.Background()
	res := e.Reservation

	switch e.Type {
	case events.ReservationCreated:
		owner, err := s.users.GetByID(ctx, e.OwnerID)
		if err != nil {
			s.log.Error().Err(err).Int64("owner_id", e.OwnerID).Msg("notify: owner lookup failed")
			return
		}
		subject := fmt.Sprintf("New reservation request %s", res.Code)
		body := fmt.Sprintf(
			"Hello %s,\n\nYou received a new reservation request for slot %d of your spot.\n\n"+
				"Check-in: %s\nCheck-out: %s\nTotal: %s\n\n"+
				"Approve or refuse it from your reservations page.",
			owner.FullName, res.SlotNumber,
			res.StartTime.Format(timeFormat), res.EndTime.Format(timeFormat),
			formatCents(res.TotalPriceCents),
		)
		s.sendEmail(owner.Email, owner.FullName, subject, body)
		s.sendSMS(owner.Phone, fmt.Sprintf("VagaLivre: new reservation request %s. Check-in %s.", res.Code, res.StartTime.Format("02/01 15:04")))

	case events.ReservationApproved, events.ReservationRefused:
		renter, err := s.users.GetByID(ctx, res.RenterID)
		if err != nil {
			s.log.Error().Err(err).Int64("renter_id", res.RenterID).Msg("notify: renter lookup failed")
			return
		}
		status := statusWord(e.Type)
		subject := fmt.Sprintf("Your reservation %s was %s", res.Code, status)
		body := fmt.Sprintf(
			"Hello %s,\n\nYour reservation has been %s.\n\n"+
				"Slot: %d\nCheck-in: %s\nCheck-out: %s\nTotal: %s\n\n"+
				"Thank you for using VagaLivre.",
			renter.FullName, status, res.SlotNumber,
			res.StartTime.Format(timeFormat), res.EndTime.Format(timeFormat),
			formatCents(res.TotalPriceCents),
		)
		s.sendEmail(renter.Email, renter.FullName, subject, body)
		s.sendSMS(renter.Phone, fmt.Sprintf("VagaLivre: reservation %s was %s. Check-in %s.", res.Code, status, res.StartTime.Format("02/01 15:04")))
	}
}

func (s *NotifyService) sendEmail(toEmail, toName, subject, body string) {
	if s.sendgrid.APIKey == "" || s.sendgrid.FromEmail == "" {
		s.log.Warn().Str("to", toEmail).Msg("notify: SendGrid not configured, skipping email")
		return
	}

	from := mail.NewEmail(s.sendgrid.FromName, s.sendgrid.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.sendgrid.APIKey)
	response, err := client.Send(message)
	if err != nil {
		s.log.Error().Err(err).Str("to", toEmail).Msg("notify: email send failed")
		return
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		s.log.Error().Int("status", response.StatusCode).Str("to", toEmail).Msg("notify: SendGrid returned non-success status")
		return
	}
	s.log.Info().Str("to", toEmail).Str("subject", subject).Msg("notify: email sent")
}

func (s *NotifyService) sendSMS(toNumber, message string) {
	if toNumber == "" {
		return
	}
	if s.twilio.AccountSID == "" || s.twilio.AuthToken == "" || s.twilio.FromNumber == "" {
		s.log.Warn().Str("to", toNumber).Msg("notify: Twilio not configured, skipping SMS")
		return
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: s.twilio.AccountSID,
		Password: s.twilio.AuthToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.twilio.FromNumber)
	params.SetBody(message)

	if _, err := client.Api.CreateMessage(params); err != nil {
		s.log.Error().Err(err).Str("to", toNumber).Msg("notify: SMS send failed")
		return
	}
	s.log.Info().Str("to", toNumber).Msg("notify: SMS sent")
}

func statusWord(t events.Type) string {
	if t == events.ReservationApproved {
		return db.StatusConfirmed
	}
	return db.StatusRefused
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
