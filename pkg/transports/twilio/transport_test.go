package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func inboundForm(body string) url.Values {
	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "whatsapp:+15550001111")
	form.Set("Body", body)
	form.Set("NumMedia", "0")
	return form
}

func postForm(t *testing.T, tr *Transport, form url.Values, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "https://example.com/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sign {
		params := map[string]string{}
		for k := range form {
			params[k] = form.Get(k)
		}
		req.Header.Set("X-Twilio-Signature", computeSignature(tr.cfg.AuthToken, tr.requestURL(req), params))
	}
	w := httptest.NewRecorder()
	tr.handleInbound(w, req)
	return w
}

func TestHandleInboundTextMessage(t *testing.T) {
	tr := New(Config{PublicURL: "https://example.com"})

	w := postForm(t, tr, inboundForm("hello there"), false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("content type = %q", ct)
	}

	select {
	case u := <-tr.Recv():
		if u.RawText != "hello there" {
			t.Errorf("raw text = %q", u.RawText)
		}
		if u.ChannelID != "whatsapp:+15550001111" {
			t.Errorf("channel id = %q", u.ChannelID)
		}
		if u.HasAudio {
			t.Errorf("text message flagged as audio")
		}
		if u.TraceID == "" {
			t.Errorf("missing trace id")
		}
		if u.Metadata["message_sid"] != "SM123" {
			t.Errorf("metadata = %+v", u.Metadata)
		}
	case <-time.After(time.Second):
		t.Fatal("expected utterance on recv channel")
	}
}

func TestHandleInboundSignatureValidation(t *testing.T) {
	tr := New(Config{AuthToken: "token", PublicURL: "https://example.com"})

	w := postForm(t, tr, inboundForm("hi"), true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid signature, got %d", w.Code)
	}

	form := inboundForm("hi")
	req := httptest.NewRequest(http.MethodPost, "https://example.com/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "invalid")
	w2 := httptest.NewRecorder()
	tr.handleInbound(w2, req)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid signature, got %d", w2.Code)
	}
}

func TestHandleInboundMissingFrom(t *testing.T) {
	tr := New(Config{PublicURL: "https://example.com"})
	form := inboundForm("hi")
	form.Del("From")

	w := postForm(t, tr, form, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleInboundVoiceNote(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ogg audio bytes"))
	}))
	defer media.Close()

	tr := New(Config{PublicURL: "https://example.com"})
	form := inboundForm("")
	form.Set("NumMedia", "1")
	form.Set("MediaContentType0", "audio/ogg")
	form.Set("MediaUrl0", media.URL+"/media/ME123")

	w := postForm(t, tr, form, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	select {
	case u := <-tr.Recv():
		if !u.HasAudio {
			t.Fatal("voice note not flagged as audio")
		}
		if string(u.Audio) != "ogg audio bytes" {
			t.Errorf("audio = %q", u.Audio)
		}
		if u.Metadata["media_content_type"] != "audio/ogg" {
			t.Errorf("metadata = %+v", u.Metadata)
		}
	case <-time.After(time.Second):
		t.Fatal("expected utterance on recv channel")
	}
}

func TestHandleInboundIgnoresNonAudioMedia(t *testing.T) {
	tr := New(Config{PublicURL: "https://example.com"})
	form := inboundForm("look at this")
	form.Set("NumMedia", "1")
	form.Set("MediaContentType0", "image/jpeg")
	form.Set("MediaUrl0", "https://api.twilio.com/media/ME456")

	w := postForm(t, tr, form, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	select {
	case u := <-tr.Recv():
		if u.HasAudio {
			t.Error("image media must not mark the utterance as audio")
		}
		if u.RawText != "look at this" {
			t.Errorf("raw text = %q", u.RawText)
		}
	case <-time.After(time.Second):
		t.Fatal("expected utterance on recv channel")
	}
}

func TestStopConcurrentWithInbound(t *testing.T) {
	tr := New(Config{PublicURL: "https://example.com"})

	go func() {
		for range tr.Recv() {
		}
	}()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					postForm(t, tr, inboundForm("racing"), false)
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	if err := tr.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	close(stop)
	wg.Wait()

	w := postForm(t, tr, inboundForm("late"), false)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after stop, got %d", w.Code)
	}
}

func TestHandleInboundMethodNotAllowed(t *testing.T) {
	tr := New(Config{})
	req := httptest.NewRequest(http.MethodGet, "https://example.com/whatsapp", nil)
	w := httptest.NewRecorder()
	tr.handleInbound(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func computeSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	base := url
	for _, k := range keys {
		base += k + params[k]
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	_, _ = mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
