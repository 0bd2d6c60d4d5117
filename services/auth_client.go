// galaxy-learn-backend/services/auth_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"galaxy-learn-backend/utils"
)

// Identity is the authenticated account as reported by the auth gateway.
type Identity struct {
	ID       string
	Email    string
	Username string
	Name     string
}

// AuthClient resolves bearer tokens to identities and creates accounts.
// Injected into middleware and handlers so tests can substitute a stub.
type AuthClient interface {
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
	CreateUser(ctx context.Context, email, password, username string) (*Identity, error)
	Configured() bool
}

// Known signup rejections from the provider, translated by the signup handler.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidEmail   = errors.New("provider rejected email")
	ErrNotAuthorized  = errors.New("not authorized to create accounts")
)

// SupabaseAuthClient talks to the Supabase GoTrue REST API.
type SupabaseAuthClient struct {
	BaseURL    string
	ServiceKey string // service-role key, used for admin signup
	AnonKey    string // public key, sent as apikey on user lookups
	Client     *http.Client
}

func NewSupabaseAuthClient(baseURL, serviceKey, anonKey string) *SupabaseAuthClient {
	return &SupabaseAuthClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		AnonKey:    anonKey,
		Client:     utils.HTTPClient,
	}
}

func (c *SupabaseAuthClient) Configured() bool {
	return c.BaseURL != "" && c.ServiceKey != ""
}

type supabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func (u *supabaseUser) identity() *Identity {
	id := &Identity{ID: u.ID, Email: u.Email}
	if v, ok := u.UserMetadata["username"].(string); ok {
		id.Username = v
	}
	if v, ok := u.UserMetadata["display_name"].(string); ok {
		id.Name = v
	}
	if id.Username == "" && id.Email != "" {
		id.Username = strings.SplitN(id.Email, "@", 2)[0]
	}
	return id
}

// GetUser resolves an access token to the account it belongs to.
func (c *SupabaseAuthClient) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	url := fmt.Sprintf("%s/auth/v1/user", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.AnonKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthGateway /auth/v1/user returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("auth validation failed: %d", resp.StatusCode)
	}

	var out supabaseUser
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

// CreateUser registers a new account. The account stays inert until the user
// confirms via the provider's email flow (email_confirm=false).
func (c *SupabaseAuthClient) CreateUser(ctx context.Context, email, password, username string) (*Identity, error) {
	url := fmt.Sprintf("%s/auth/v1/admin/users", c.BaseURL)

	reqBody := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": false,
		"user_metadata": map[string]interface{}{
			"username": username,
		},
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("apikey", c.ServiceKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("AuthGateway /auth/v1/admin/users returned %d: %s", resp.StatusCode, string(body))
		return nil, translateProviderError(resp.StatusCode, body)
	}

	var out supabaseUser
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

// translateProviderError maps known GoTrue rejections to sentinel errors so
// the signup handler can show a friendly message.
func translateProviderError(status int, body []byte) error {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := strings.ToLower(payload.Msg + " " + payload.Message + " " + payload.ErrorDescription)

	switch {
	case strings.Contains(msg, "already") || strings.Contains(msg, "registered") || strings.Contains(msg, "exists"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "email"):
		return ErrInvalidEmail
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrNotAuthorized
	default:
		return fmt.Errorf("signup failed: %d", status)
	}
}
