package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
)

// Client talks to the hosting provider's deploy API: one call with a site
// name and the full file set, a live URL back.
type Client struct {
	cfg    *DeployConfig
	client *http.Client
}

var _ interfaces.Deployer = (*Client)(nil)

func NewClient(cfg *DeployConfig) *Client {
	return &Client{
		cfg,
		&http.Client{Timeout: 30 * time.Second},
	}
}

type deployRequest struct {
	Name  string            `json:"name"`
	Files map[string]string `json:"files"`
}

type deployResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (c *Client) Deploy(ctx context.Context, siteName string, files map[string][]byte) (string, error) {
	payload := deployRequest{
		Name:  siteName,
		Files: make(map[string]string, len(files)),
	}
	for name, content := range files {
		payload.Files[name] = string(content)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, "POST", c.cfg.APIURL+"/deploys", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("deploy request failed, %v", err)
	}
	defer resp.Body.Close()

	var result deployResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("err decoding deploy response, %v", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("deploy rejected with status %v: %v", resp.StatusCode, result.Error)
	}
	if result.URL == "" {
		return "", fmt.Errorf("deploy response carries no url, state %v", result.State)
	}
	return result.URL, nil
}

func (c *Client) Provider() string {
	return c.cfg.Provider
}
