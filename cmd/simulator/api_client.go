package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AuthResponse struct {
	User
	Token string `json:"token"`
}

// APIError is a non-2xx response. Body is kept raw so callers can compare it.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, string(e.Body))
}

func (c *APIClient) Register(email, password, firstName, lastName string) (*AuthResponse, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Login(email, password string) (*AuthResponse, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Me(token string) (*User, error) {
	var result User
	if err := c.do(http.MethodGet, "/auth/me", nil, token, &result); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &result, nil
}

func (c *APIClient) UpdateProfile(token, firstName, lastName, email string) (*User, error) {
	var result User
	err := c.do(http.MethodPut, "/account/profile", map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     email,
	}, token, &result)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &result, nil
}

func (c *APIClient) ChangePassword(token, current, next string) error {
	err := c.do(http.MethodPut, "/account/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}, token, nil)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: raw}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
