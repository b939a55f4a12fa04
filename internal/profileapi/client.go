// Package profileapi is the client for the remote account service: signup,
// login, and the server-side copy of the inspector profile. Requests after
// login carry the account id in the user-id header.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmorneau/marinspect/internal/domain"
)

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
	}
}

// Account is the identity returned by signup and login.
type Account struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Company  string `json:"company"`
}

// Vessel is the account's current assignment.
type Vessel struct {
	Name string `json:"name"`
	IMO  string `json:"imo"`
	Type string `json:"type"`
}

// RemoteProfile mirrors the account service's profile document. It is a
// distinct shape from the locally stored inspector profiles;
// certifications live in one free-form string here.
type RemoteProfile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	Title          string `json:"title"`
	EmployeeID     string `json:"employeeId"`
	LicenseNumber  string `json:"licenseNumber"`
	Certifications string `json:"certifications"`
	Experience     string `json:"experience"`
	Company        string `json:"company"`
	Phone          string `json:"phone"`
	CurrentVessel  Vessel `json:"currentVessel"`
}

// ProfileUpdate carries a partial update; nil fields are left unchanged on
// the server.
type ProfileUpdate struct {
	FullName       *string `json:"fullName,omitempty"`
	Title          *string `json:"title,omitempty"`
	EmployeeID     *string `json:"employeeId,omitempty"`
	LicenseNumber  *string `json:"licenseNumber,omitempty"`
	Certifications *string `json:"certifications,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	Company        *string `json:"company,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	CurrentVessel  *Vessel `json:"currentVessel,omitempty"`
}

// envelope is the service's common response wrapper.
type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	UserID  string         `json:"userId"`
	Email   string         `json:"email"`
	Name    string         `json:"fullName"`
	Title   string         `json:"title"`
	Company string         `json:"company"`
	User    *RemoteProfile `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account. The service derives the initial full name
// from the email's local part.
func (c *Client) Signup(ctx context.Context, email, password string) (*Account, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.logger.Info("account created", "email", env.Email)
	return accountFrom(env), nil
}

// Login authenticates and returns the account identity. The returned UserID
// authorizes the profile operations.
func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.logger.Info("logged in", "email", env.Email)
	return accountFrom(env), nil
}

// Profile fetches the account's server-side profile.
func (c *Client) Profile(ctx context.Context, userID string) (*RemoteProfile, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/profile", userID, nil)
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, fmt.Errorf("response missing user")
	}
	return env.User, nil
}

// UpdateProfile applies a partial update and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*RemoteProfile, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/auth/profile", userID, update)
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, fmt.Errorf("response missing user")
	}
	return env.User, nil
}

// DeleteAccount removes the account and all its server-side data.
func (c *Client) DeleteAccount(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/auth/profile", userID, nil)
	return err
}

func accountFrom(env *envelope) *Account {
	return &Account{
		UserID:   env.UserID,
		Email:    env.Email,
		FullName: env.Name,
		Title:    env.Title,
		Company:  env.Company,
	}
}

func (c *Client) do(ctx context.Context, method, path, userID string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("user-id", userID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &domain.ServerRejection{StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if env.Message != "" {
			return nil, fmt.Errorf("account service: %s", env.Message)
		}
		return nil, &domain.ServerRejection{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return &env, nil
}
