package midjourney

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig() *Config {
	cfg := &Config{Token: "secret", GuildID: "guild", ChannelID: "chan", SessionID: "sess"}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func TestImagineInteraction(t *testing.T) {
	b, err := json.Marshal(imagineInteraction(testConfig(), "42", "a red fox"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	if got["type"].(float64) != 2 || got["nonce"] != "42" || got["channel_id"] != "chan" ||
		got["guild_id"] != "guild" || got["session_id"] != "sess" || got["application_id"] != DefaultApplicationID {
		t.Fatalf("envelope = %v", got)
	}
	if _, ok := got["message_id"]; ok {
		t.Error("imagine carries message_id")
	}
	data := got["data"].(map[string]any)
	if data["name"] != "imagine" || data["id"] != DefaultImagineCommandID || data["version"] != DefaultImagineCommandVersion {
		t.Fatalf("data = %v", data)
	}
	opts := data["options"].([]any)
	if len(opts) != 1 {
		t.Fatalf("options = %v", opts)
	}
	opt := opts[0].(map[string]any)
	if opt["name"] != "prompt" || opt["value"] != "a red fox" || opt["type"].(float64) != 3 {
		t.Fatalf("option = %v", opt)
	}
	if atts, ok := data["attachments"].([]any); !ok || len(atts) != 0 {
		t.Fatalf("attachments = %v", data["attachments"])
	}
}

func TestVariationInteraction(t *testing.T) {
	finished := &Outcome{Type: OutcomeFinish, MessageID: "m9", Hash: "abc", Flags: 0}
	b, err := json.Marshal(variationInteraction(testConfig(), "43", finished, 3))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["type"].(float64) != 3 || got["message_id"] != "m9" || got["nonce"] != "43" {
		t.Fatalf("envelope = %v", got)
	}
	if flags, ok := got["message_flags"].(float64); !ok || flags != 0 {
		t.Fatalf("message_flags = %v", got["message_flags"])
	}
	data := got["data"].(map[string]any)
	if data["custom_id"] != "MJ::JOB::variation::3::abc" || data["component_type"].(float64) != 2 {
		t.Fatalf("data = %v", data)
	}
}

func TestInteractionClient_Submit(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantMsg    string
		wantAuth   bool
		wantLimits bool
	}{
		{name: "accepted", status: http.StatusNoContent},
		{name: "json error", status: http.StatusBadRequest, body: `{"message":"Invalid Form Body","code":50035}`, wantErr: true, wantMsg: "Invalid Form Body"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `401: Unauthorized`, wantErr: true, wantMsg: "401: Unauthorized", wantAuth: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"message":"You are being rate limited.","retry_after":1.5}`, wantErr: true, wantMsg: "You are being rate limited.", wantLimits: true},
		{name: "ok is not accepted", status: http.StatusOK, body: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			var gotBody []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/interactions" {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				gotAuth = r.Header.Get("Authorization")
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			h := newInteractionClient(&clientConfig{
				apiBaseURL: srv.URL + "/api",
				httpClient: srv.Client(),
				logger:     discardLogger(),
			}, "secret")

			token, err := h.submit(context.Background(), CommandImagine, imagineInteraction(testConfig(), "77", "fox"))
			if gotAuth != "secret" {
				t.Errorf("Authorization = %q", gotAuth)
			}
			if len(gotBody) == 0 {
				t.Error("empty request body")
			}
			if !tt.wantErr {
				if err != nil || token != "77" {
					t.Fatalf("submit = (%q, %v), want (77, nil)", token, err)
				}
				return
			}
			if token != "" {
				t.Errorf("token = %q, want empty", token)
			}
			apiErr, ok := AsError(err)
			if !ok {
				t.Fatalf("error %v is not *Error", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if tt.wantMsg != "" && apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if apiErr.IsAuth() != tt.wantAuth || apiErr.IsRateLimit() != tt.wantLimits {
				t.Errorf("IsAuth=%v IsRateLimit=%v", apiErr.IsAuth(), apiErr.IsRateLimit())
			}
		})
	}
}

func TestInteractionClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := newInteractionClient(&clientConfig{
		apiBaseURL: url,
		httpClient: http.DefaultClient,
		logger:     discardLogger(),
	}, "secret")
	_, err := h.submit(context.Background(), CommandImagine, imagineInteraction(testConfig(), "1", "fox"))
	if !IsTransport(err) {
		t.Fatalf("error = %v, want transport error", err)
	}
}
