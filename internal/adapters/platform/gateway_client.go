package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	portsvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
)

const defaultRequestTimeout = 10 * time.Second

// GatewayClient implements services.ChannelProvisioner against the chat
// platform gateway's REST surface. The gateway owns the real channels; this
// client only creates, mutates and inspects them.
type GatewayClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGatewayClient creates a client for the gateway at baseURL, authenticating
// with the given bot token.
func NewGatewayClient(baseURL, token string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

var _ portsvc.ChannelProvisioner = (*GatewayClient)(nil)

type createChannelRequest struct {
	Name      string  `json:"name"`
	OwnerID   string  `json:"owner_id"`
	PartnerID *string `json:"partner_id,omitempty"`
	UserLimit int     `json:"user_limit"`
}

type createChannelResponse struct {
	ChannelID string `json:"channel_id"`
}

func (c *GatewayClient) CreateVoiceChannel(ctx context.Context, params portsvc.CreateChannelParams) (string, error) {
	body := createChannelRequest{
		Name:      params.Name,
		OwnerID:   params.OwnerID,
		PartnerID: params.PartnerID,
		UserLimit: params.UserLimit,
	}
	var resp createChannelResponse
	if err := c.do(ctx, http.MethodPost, "/guild/voice-channels", body, &resp); err != nil {
		return "", fmt.Errorf("failed to create voice channel: %w", err)
	}
	if resp.ChannelID == "" {
		return "", fmt.Errorf("gateway returned empty channel id")
	}
	return resp.ChannelID, nil
}

func (c *GatewayClient) DeleteVoiceChannel(ctx context.Context, channelID string) error {
	path := "/guild/voice-channels/" + url.PathEscape(channelID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete voice channel %s: %w", channelID, err)
	}
	return nil
}

func (c *GatewayClient) RenameVoiceChannel(ctx context.Context, channelID, name string) error {
	path := "/guild/voice-channels/" + url.PathEscape(channelID)
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("failed to rename voice channel %s: %w", channelID, err)
	}
	return nil
}

func (c *GatewayClient) GrantChannelAccess(ctx context.Context, channelID, userID string) error {
	path := "/guild/voice-channels/" + url.PathEscape(channelID) + "/members/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("failed to grant access on channel %s to %s: %w", channelID, userID, err)
	}
	return nil
}

type occupancyResponse struct {
	Occupants int `json:"occupants"`
}

func (c *GatewayClient) CountOccupants(ctx context.Context, channelID string) (int, error) {
	path := "/guild/voice-channels/" + url.PathEscape(channelID) + "/occupancy"
	var resp occupancyResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to count occupants of channel %s: %w", channelID, err)
	}
	return resp.Occupants, nil
}

func (c *GatewayClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway responded %d: %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}
