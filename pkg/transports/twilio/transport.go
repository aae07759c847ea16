// Package twilio receives WhatsApp messages through Twilio's inbound
// webhook. Each POST becomes one utterance; voice notes are fetched from
// Twilio's media API before the utterance is emitted.
package twilio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/redact"
	"github.com/avaaz-ai/avaaz/pkg/transports"
)

type Config struct {
	ServerAddr  string `mapstructure:"server_addr"`
	PublicURL   string `mapstructure:"public_url"`
	AccountSID  string `mapstructure:"account_sid"`
	AuthToken   string `mapstructure:"auth_token"`
	WebhookPath string `mapstructure:"webhook_path"`
	// MaxMediaBytes bounds voice note downloads. Twilio caps WhatsApp
	// media at 16 MB; anything past that is rejected upstream anyway.
	MaxMediaBytes int64 `mapstructure:"max_media_bytes"`
}

func (c Config) withDefaults() Config {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.WebhookPath == "" {
		c.WebhookPath = "/whatsapp"
	}
	if c.MaxMediaBytes <= 0 {
		c.MaxMediaBytes = 16 << 20
	}
	return c
}

type Transport struct {
	cfg    Config
	server *http.Server
	recvCh chan message.Utterance
	media  *http.Client
	logger *slog.Logger

	// closed and mu guard recvCh: handlers still in flight when Stop
	// runs must never send on the closed channel.
	closed atomic.Bool
	mu     sync.Mutex
}

func New(cfg Config) *Transport {
	cfg = cfg.withDefaults()
	return &Transport{
		cfg:    cfg,
		recvCh: make(chan message.Utterance, 512),
		media:  &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewComponentLogger(slog.Default(), "twilio_transport"),
	}
}

func (t *Transport) Name() string { return "twilio_whatsapp" }

func (t *Transport) Recv() <-chan message.Utterance { return t.recvCh }

func (t *Transport) ReadyFields() map[string]any {
	return map[string]any{
		"webhook_url": t.webhookURL(),
	}
}

func (t *Transport) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc(t.cfg.WebhookPath, t.handleInbound)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	t.server = &http.Server{
		Addr:              t.cfg.ServerAddr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	go func() {
		<-ctx.Done()
		_ = t.server.Close()
	}()
	go func() {
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("transport server error", slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (t *Transport) Stop() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if t.server != nil {
		_ = t.server.Close()
	}
	t.mu.Lock()
	close(t.recvCh)
	t.mu.Unlock()
	return nil
}

func (t *Transport) handleInbound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if t.closed.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		t.logger.Warn("webhook form decode failed",
			slog.String("reason_code", string(errorsx.ReasonTransportDecode)),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if t.cfg.AuthToken != "" && !t.validateSignature(r) {
		t.logger.Warn("invalid webhook signature",
			slog.String("reason_code", string(errorsx.ReasonTransportInvalidSignature)))
		w.WriteHeader(http.StatusForbidden)
		return
	}

	u, err := t.utteranceFromForm(r)
	if err != nil {
		t.logger.Warn("webhook rejected",
			slog.String("reason_code", string(errorsx.Reason(err))),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	select {
	case t.recvCh <- u:
	default:
		t.logger.Warn("inbound channel full, dropping message",
			slog.String("trace_id", u.TraceID))
	}
	t.mu.Unlock()

	// Reply asynchronously through the delivery client; the webhook
	// response itself carries no message.
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(`<Response></Response>`))
}

func (t *Transport) utteranceFromForm(r *http.Request) (message.Utterance, error) {
	from := strings.TrimSpace(r.FormValue("From"))
	if from == "" {
		return message.Utterance{}, errorsx.New(errorsx.ReasonTransportDecode, "missing From field")
	}
	body := r.FormValue("Body")
	numMedia, _ := strconv.Atoi(r.FormValue("NumMedia"))

	u := message.Utterance{
		RawText:   body,
		ChannelID: from,
		TraceID:   uuid.NewString(),
		Metadata:  map[string]string{},
	}
	if sid := r.FormValue("MessageSid"); sid != "" {
		u.Metadata["message_sid"] = sid
	}
	if profile := r.FormValue("ProfileName"); profile != "" {
		u.Metadata["profile_name"] = profile
	}

	if numMedia > 0 && strings.HasPrefix(r.FormValue("MediaContentType0"), "audio/") {
		mediaURL := r.FormValue("MediaUrl0")
		audio, err := t.fetchMedia(r.Context(), mediaURL)
		if err != nil {
			return message.Utterance{}, err
		}
		u.HasAudio = true
		u.Audio = audio
		u.Metadata["media_content_type"] = r.FormValue("MediaContentType0")
	}

	t.logger.Info("message received",
		slog.String("trace_id", u.TraceID),
		slog.String("channel_id", redact.ChannelID(u.ChannelID)),
		slog.Bool("has_audio", u.HasAudio),
		slog.Int("text_chars", len(u.RawText)))
	return u, nil
}

func (t *Transport) fetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	if mediaURL == "" {
		return nil, errorsx.New(errorsx.ReasonTransportDecode, "media message without media url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTransportDecode)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	resp, err := t.media.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTransportDecode)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorsx.New(errorsx.ReasonTransportDecode, "media fetch returned "+resp.Status)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, t.cfg.MaxMediaBytes))
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTransportDecode)
	}
	return audio, nil
}

// validateSignature checks X-Twilio-Signature over the form parameters,
// which is how Twilio signs URL-encoded webhooks.
func (t *Transport) validateSignature(r *http.Request) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}
	params := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	validator := twilioclient.NewRequestValidator(t.cfg.AuthToken)
	return validator.Validate(t.requestURL(r), params, signature)
}

func (t *Transport) requestURL(r *http.Request) string {
	if t.cfg.PublicURL != "" {
		return strings.TrimRight(t.cfg.PublicURL, "/") + r.URL.RequestURI()
	}
	scheme := r.URL.Scheme
	if scheme == "" {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		} else {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func (t *Transport) webhookURL() string {
	if t.cfg.PublicURL != "" {
		return strings.TrimRight(t.cfg.PublicURL, "/") + t.cfg.WebhookPath
	}
	addr := t.cfg.ServerAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + t.cfg.WebhookPath
}

var _ transports.Transport = (*Transport)(nil)
var _ transports.ReadyReporter = (*Transport)(nil)
