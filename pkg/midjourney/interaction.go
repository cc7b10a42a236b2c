package midjourney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Interaction types.
const (
	interactionApplicationCommand = 2
	interactionMessageComponent   = 3
)

const (
	commandTypeChatInput = 1
	optionTypeString     = 3
	componentTypeButton  = 2
)

// CommandKind names the command an interaction issues.
type CommandKind string

const (
	CommandImagine   CommandKind = "imagine"
	CommandVariation CommandKind = "variation"
)

// interaction is the body POSTed to /interactions.
type interaction struct {
	Type          int    `json:"type"`
	ApplicationID string `json:"application_id"`
	GuildID       string `json:"guild_id,omitempty"`
	ChannelID     string `json:"channel_id"`
	MessageFlags  *int   `json:"message_flags,omitempty"`
	MessageID     string `json:"message_id,omitempty"`
	SessionID     string `json:"session_id"`
	Nonce         string `json:"nonce"`
	Data          any    `json:"data"`
}

type commandOption struct {
	Type  int    `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type commandData struct {
	Version     string          `json:"version"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        int             `json:"type"`
	Options     []commandOption `json:"options"`
	Attachments []any           `json:"attachments"`
}

type componentData struct {
	ComponentType int    `json:"component_type"`
	CustomID      string `json:"custom_id"`
}

// imagineInteraction builds the /imagine application command.
func imagineInteraction(cfg *Config, nonce, prompt string) *interaction {
	return &interaction{
		Type:          interactionApplicationCommand,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
		ChannelID:     cfg.ChannelID,
		SessionID:     cfg.SessionID,
		Nonce:         nonce,
		Data: commandData{
			Version: cfg.ImagineCommandVersion,
			ID:      cfg.ImagineCommandID,
			Name:    string(CommandImagine),
			Type:    commandTypeChatInput,
			Options: []commandOption{
				{Type: optionTypeString, Name: "prompt", Value: prompt},
			},
			Attachments: []any{},
		},
	}
}

// variationInteraction builds the button press on a finished grid.
func variationInteraction(cfg *Config, nonce string, finished *Outcome, index int) *interaction {
	flags := finished.Flags
	return &interaction{
		Type:          interactionMessageComponent,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
		ChannelID:     cfg.ChannelID,
		MessageFlags:  &flags,
		MessageID:     finished.MessageID,
		SessionID:     cfg.SessionID,
		Nonce:         nonce,
		Data: componentData{
			ComponentType: componentTypeButton,
			CustomID:      fmt.Sprintf("MJ::JOB::variation::%d::%s", index, finished.Hash),
		},
	}
}

// interactionClient submits commands over HTTP. No retries are made.
type interactionClient struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func newInteractionClient(cfg *clientConfig, token string) *interactionClient {
	return &interactionClient{
		client:  cfg.httpClient,
		baseURL: cfg.apiBaseURL,
		token:   token,
		logger:  cfg.logger,
	}
}

// submit POSTs the interaction. The platform answers 204 No Content when it
// accepts the command; the interaction nonce is returned as the correlation
// token. Any other status is returned as *Error.
func (h *interactionClient) submit(ctx context.Context, kind CommandKind, in *interaction) (string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("midjourney: marshal %s interaction: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/interactions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("midjourney: create request: %w", err)
	}
	req.Header.Set("Authorization", h.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "midjourney-go/1.0")

	h.logger.Debug("midjourney: submitting interaction", "kind", kind, "nonce", in.Nonce)
	resp, err := h.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "submit " + string(kind), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return in.Nonce, nil
	}
	return "", parseError(resp)
}

func parseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, e); err != nil || e.Message == "" {
		e.Message = string(bytes.TrimSpace(data))
	}
	return e
}
