// Package twilio sends WhatsApp replies through Twilio's messaging API.
package twilio

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/avaaz-ai/avaaz/pkg/delivery"
	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/redact"
)

type Config struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	// FromNumber is the WhatsApp-enabled sender, e.g. "whatsapp:+1415...".
	FromNumber string `mapstructure:"from_number"`
}

// MediaStager uploads reply audio somewhere Twilio can fetch it and
// returns the public URL. WhatsApp media must be URL-addressable; raw
// bytes cannot ride along on the message itself.
type MediaStager interface {
	Stage(ctx context.Context, audio []byte) (string, error)
}

type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// Sender delivers replies over WhatsApp. Audio is attached only when a
// media stager is configured; otherwise the text goes out alone.
type Sender struct {
	cfg    Config
	client messageCreator
	stager MediaStager
	logger *slog.Logger
}

func New(cfg Config, stager MediaStager) (*Sender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("missing twilio credentials")
	}
	if cfg.FromNumber == "" {
		return nil, errors.New("missing twilio from number")
	}
	if !strings.HasPrefix(cfg.FromNumber, "whatsapp:") {
		cfg.FromNumber = "whatsapp:" + cfg.FromNumber
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Sender{
		cfg:    cfg,
		client: rest.Api,
		stager: stager,
		logger: logging.NewComponentLogger(slog.Default(), "twilio_delivery"),
	}, nil
}

func (s *Sender) Name() string { return "twilio_whatsapp" }

func (s *Sender) Send(ctx context.Context, channelID, text string, audio []byte) error {
	if strings.TrimSpace(channelID) == "" {
		return errorsx.New(errorsx.ReasonDelivery, "empty channel id")
	}
	to := channelID
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.cfg.FromNumber)
	params.SetBody(text)

	hasMedia := false
	if len(audio) > 0 {
		if s.stager == nil {
			s.logger.Warn("no media stager configured, sending text only",
				slog.String("channel_id", redact.ChannelID(channelID)))
		} else if mediaURL, err := s.stager.Stage(ctx, audio); err != nil {
			// Audio staging failure degrades to text, same as a failed
			// synthesis upstream.
			s.logger.Warn("media staging failed, sending text only",
				slog.String("channel_id", redact.ChannelID(channelID)),
				slog.String("error", err.Error()))
		} else {
			params.SetMediaUrl([]string{mediaURL})
			hasMedia = true
		}
	}

	msg, err := s.client.CreateMessage(params)
	if err != nil {
		s.logger.Error("message send failed",
			slog.String("channel_id", redact.ChannelID(channelID)),
			slog.String("error", err.Error()))
		return errorsx.Wrap(err, errorsx.ReasonDelivery)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	s.logger.Info("message sent",
		slog.String("channel_id", redact.ChannelID(channelID)),
		slog.String("message_sid", sid),
		slog.Bool("has_media", hasMedia))
	return nil
}

var _ delivery.Delivery = (*Sender)(nil)
