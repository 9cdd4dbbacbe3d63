package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"school-roster-service/internal/models"
	"school-roster-service/pkg/errors"
	"school-roster-service/pkg/logger"
)

// Client talks to the school-management persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a REST client for the persistence service.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.GetGlobalLogger().WithComponent("persistence_client"),
	}
}

type batchRequest struct {
	Students []models.ValidatedRecord `json:"students"`
}

// SubmitBatch posts the full validated batch in one request and returns the
// service's own imported/failed counts and per-row errors verbatim.
func (c *Client) SubmitBatch(ctx context.Context, records []models.ValidatedRecord) (*models.SubmissionResult, error) {
	body, err := json.Marshal(batchRequest{Students: records})
	if err != nil {
		return nil, errors.InternalError("batch encoding", err)
	}

	url := c.baseURL + "/api/students/bulk"
	resp, err := c.post(ctx, url, body)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeSubmissionFailed,
			fmt.Sprintf("batch submission to %s failed", url), err).
			WithSuggestion("check the server address and network connectivity")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeSubmissionFailed, "reading submission response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NetworkError(errors.CodeSubmissionRejected,
			fmt.Sprintf("server rejected the batch (%s): %s", resp.Status, serverMessage(payload)), nil)
	}

	var result models.SubmissionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.NetworkError(errors.CodeSubmissionFailed, "decoding submission response failed", err)
	}

	c.logger.WithFields(logger.Fields{
		"imported": result.Imported,
		"failed":   result.Failed,
	}).Debug("Submission response received")

	return &result, nil
}

type registerRequest struct {
	Role      string `json:"role"`
	LoginID   string `json:"loginId"`
	Password  string `json:"password"`
	Reference string `json:"reference,omitempty"`
}

// RegisterIdentity creates one portal account for a generated credential.
// Used by the bulk issuance loop, one call per identity.
func (c *Client) RegisterIdentity(ctx context.Context, role models.Role, identity models.PortalIdentity, reference string) error {
	body, err := json.Marshal(registerRequest{
		Role:      role.Label(),
		LoginID:   identity.ID,
		Password:  identity.Password,
		Reference: reference,
	})
	if err != nil {
		return errors.InternalError("registration encoding", err)
	}

	url := c.baseURL + "/api/portal/accounts"
	resp, err := c.post(ctx, url, body)
	if err != nil {
		return errors.NetworkError(errors.CodeIssuanceFailed,
			fmt.Sprintf("registration of %s failed", identity.ID), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return errors.NetworkError(errors.CodeIssuanceFailed,
			fmt.Sprintf("server rejected account %s (%s): %s", identity.ID, resp.Status, serverMessage(payload)), nil)
	}

	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// serverMessage extracts a human-readable message from an error payload,
// falling back to the raw body.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(payload)
}
