package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
)

// Backend is what the rest of the service depends on. Tests swap in a
// fake; production uses *Client.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Sync(ctx context.Context, userID string) (*models.SyncData, error)
	GetDocumentContent(ctx context.Context, userID, docID string) (string, error)
	SaveItems(ctx context.Context, userID string, kind models.ItemKind, items interface{}) error
	SendMessage(ctx context.Context, userID, content string) (*models.Message, error)
	GetMessages(ctx context.Context, userID, after string) ([]models.Message, error)
	LinkByUsername(ctx context.Context, userID, targetUsername string) (*LinkResult, error)
	GetPendingInvites(ctx context.Context, userID string) ([]models.PendingInvite, error)
	RespondToInvite(ctx context.Context, userID, inviteID string, accept bool) (string, error)
	SaveSharedEventsBatch(ctx context.Context, userID string, events []models.SharedEvent) error
	GetSharedEvents(ctx context.Context, userID string) ([]models.SharedEvent, error)
	Offline() bool
}

// LinkResult is what linkByUsername returns: either an immediate link
// or a pending invite on the other account.
type LinkResult struct {
	Status       string `json:"status"`
	LinkedUserID string `json:"linkedUserId,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body, err := c.request(ctx, "login", map[string]interface{}{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &user, nil
}

func (c *Client) Signup(ctx context.Context, username, password string) (*models.User, error) {
	body, err := c.request(ctx, "signup", map[string]interface{}{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode signup response: %w", err)
	}
	return &user, nil
}

// Sync fetches the full per-user snapshot.
func (c *Client) Sync(ctx context.Context, userID string) (*models.SyncData, error) {
	body, err := c.request(ctx, "sync", map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, err
	}

	var result struct {
		Data models.SyncData `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sync response: %w", err)
	}
	return &result.Data, nil
}

// GetDocumentContent fetches the deferred payload of one document.
func (c *Client) GetDocumentContent(ctx context.Context, userID, docID string) (string, error) {
	body, err := c.request(ctx, "getDocumentContent", map[string]interface{}{
		"userId": userID,
		"docId":  docID,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode document content: %w", err)
	}
	return result.Data, nil
}

// SaveItems replaces one replicated collection wholesale. Profile goes
// up as a single-element list, same as every other kind.
func (c *Client) SaveItems(ctx context.Context, userID string, kind models.ItemKind, items interface{}) error {
	_, err := c.request(ctx, "saveItems", map[string]interface{}{
		"userId": userID,
		"type":   string(kind),
		"items":  items,
	})
	return err
}

func (c *Client) SendMessage(ctx context.Context, userID, content string) (*models.Message, error) {
	body, err := c.request(ctx, "sendMessage", map[string]interface{}{
		"userId":  userID,
		"content": content,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Message models.Message `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sendMessage response: %w", err)
	}
	return &result.Message, nil
}

func (c *Client) GetMessages(ctx context.Context, userID, after string) ([]models.Message, error) {
	data := map[string]interface{}{"userId": userID}
	if after != "" {
		data["after"] = after
	}
	body, err := c.request(ctx, "getMessages", data)
	if err != nil {
		return nil, err
	}

	var result struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode getMessages response: %w", err)
	}
	return result.Messages, nil
}

func (c *Client) LinkByUsername(ctx context.Context, userID, targetUsername string) (*LinkResult, error) {
	body, err := c.request(ctx, "linkByUsername", map[string]interface{}{
		"userId":         userID,
		"targetUsername": targetUsername,
	})
	if err != nil {
		return nil, err
	}

	var result LinkResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode link response: %w", err)
	}
	return &result, nil
}

func (c *Client) GetPendingInvites(ctx context.Context, userID string) ([]models.PendingInvite, error) {
	body, err := c.request(ctx, "getPendingInvites", map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, err
	}

	var result struct {
		Invites []models.PendingInvite `json:"invites"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode invites response: %w", err)
	}
	return result.Invites, nil
}

// RespondToInvite accepts or rejects a link request. On accept the
// backend returns the now-linked co-parent's id.
func (c *Client) RespondToInvite(ctx context.Context, userID, inviteID string, accept bool) (string, error) {
	body, err := c.request(ctx, "respondToInvite", map[string]interface{}{
		"userId":   userID,
		"inviteId": inviteID,
		"accept":   accept,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Linked string `json:"linked"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode invite response: %w", err)
	}
	return result.Linked, nil
}

// SaveSharedEventsBatch persists calendar writes in one call, whether
// a single edit or a full generated plan.
func (c *Client) SaveSharedEventsBatch(ctx context.Context, userID string, events []models.SharedEvent) error {
	_, err := c.request(ctx, "saveSharedEventsBatch", map[string]interface{}{
		"userId": userID,
		"events": events,
	})
	return err
}

func (c *Client) GetSharedEvents(ctx context.Context, userID string) ([]models.SharedEvent, error) {
	body, err := c.request(ctx, "getSharedEvents", map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, err
	}

	var result struct {
		Events []models.SharedEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}
	return result.Events, nil
}
