package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SyncSession tells the backend a new address is authenticated so it can mint
// its own session artifact. Callers treat this as best-effort.
func (c *Client) SyncSession(ctx context.Context, address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}
	return c.post(ctx, "/jwt", map[string]string{"email": address}, nil)
}

// GetRole fetches the role assigned to address. Addresses without an elevated
// assignment resolve to RoleCustomer.
func (c *Client) GetRole(ctx context.Context, address string) (Role, error) {
	if address == "" {
		return "", fmt.Errorf("address is required")
	}
	var payload struct {
		Role string `json:"role"`
	}
	if err := c.get(ctx, "/users/"+segment(address)+"/role", nil, &payload); err != nil {
		return "", err
	}
	return ParseRole(payload.Role)
}

// UpsertUser records a user profile after sign-up or first social sign-in.
// A 409 from the backend means the user already exists and is not an error.
func (c *Client) UpsertUser(ctx context.Context, user User) error {
	if user.Email == "" {
		return fmt.Errorf("user email is required")
	}
	if user.Role == "" {
		user.Role = RoleCustomer
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastLogAt = now

	err := c.post(ctx, "/users", user, nil)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

// GetProfile returns the profile stored for address.
func (c *Client) GetProfile(ctx context.Context, address string) (*User, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	var user User
	if err := c.get(ctx, "/user/"+segment(address), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate holds editable profile fields.
type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	Photo       string `json:"photo,omitempty"`
	Phone       string `json:"phone,omitempty"`
	HomeAddress string `json:"address,omitempty"`
}

// UpdateProfile patches the profile with the given record id.
func (c *Client) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	return c.patch(ctx, "/users/"+segment(id), update, nil)
}

// ListUsers returns every user. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAgents returns users holding the agent role.
func (c *Client) ListAgents(ctx context.Context) ([]User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	agents := make([]User, 0, len(users))
	for _, u := range users {
		if strings.EqualFold(string(u.Role), string(RoleAgent)) {
			agents = append(agents, u)
		}
	}
	return agents, nil
}

// SetUserRole changes the role of the user with record id. Admin only.
func (c *Client) SetUserRole(ctx context.Context, id string, role Role) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	return c.patch(ctx, "/user/"+segment(id), map[string]Role{"role": role}, nil)
}

// DeleteUser removes the user with record id. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	return c.delete(ctx, "/users/"+segment(id), nil)
}
