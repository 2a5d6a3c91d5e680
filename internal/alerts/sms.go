package alerts

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMS sends alerts as text messages through the Twilio REST API.
type SMS struct {
	api  messageCreator
	from string
	to   string
}

// NewSMS creates a Twilio-backed SMS channel.
func NewSMS(cfg SMSConfig) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMS{api: client.Api, from: cfg.From, to: cfg.To}
}

func (s *SMS) Name() string {
	return "sms"
}

// Send posts the alert message. The Twilio client has no context support, so
// cancellation is only observed before the request starts.
func (s *SMS) Send(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(a.Message())

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if msg != nil && msg.ErrorMessage != nil {
		return fmt.Errorf("send sms: %s", *msg.ErrorMessage)
	}
	return nil
}
