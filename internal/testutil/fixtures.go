package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	firstName string
	lastName  string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:     fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		firstName: "Test",
		lastName:  "User",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// Build stores the user and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, users repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        domain.NormalizeEmail(b.email),
		PasswordHash: string(hashedPassword),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// UserResponse matches the API user payload
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

// ErrorResponse matches the API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterBody returns the JSON body the register endpoint expects
func (b *UserBuilder) RegisterBody() map[string]string {
	return map[string]string{
		"email":     b.email,
		"password":  b.password,
		"firstName": b.firstName,
		"lastName":  b.lastName,
	}
}

// BuildAndAuthenticate creates a user via API and returns the user and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	body, _ := json.Marshal(b.RegisterBody())

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.ID)
	user := &domain.User{
		ID:        userID,
		Email:     authResp.Email,
		FirstName: authResp.FirstName,
		LastName:  authResp.LastName,
	}

	return user, authResp.Token
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req with a default client and registers body cleanup
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
