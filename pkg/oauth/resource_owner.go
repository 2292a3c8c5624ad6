package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ResourceOwner is the authenticated Webflow user.
// It is immutable once constructed.
type ResourceOwner struct {
	id        string
	email     string
	firstName string
	lastName  string
}

// webflowUser mirrors the "user" object returned by GET /user.
type webflowUser struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type webflowUserResponse struct {
	User *webflowUser `json:"user"`
}

// NewResourceOwner parses a {"user":{...}} payload.
// Returns ErrMalformedUser if the user object is missing.
func NewResourceOwner(data []byte) (*ResourceOwner, error) {
	var resp webflowUserResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode user: %w", err))
	}
	if resp.User == nil {
		return nil, ErrMalformedUser
	}

	return &ResourceOwner{
		id:        resp.User.ID,
		email:     resp.User.Email,
		firstName: resp.User.FirstName,
		lastName:  resp.User.LastName,
	}, nil
}

func (o *ResourceOwner) ID() string        { return o.id }
func (o *ResourceOwner) Email() string     { return o.email }
func (o *ResourceOwner) FirstName() string { return o.firstName }
func (o *ResourceOwner) LastName() string  { return o.lastName }

// ToMap returns the owner details keyed by the upstream field names.
func (o *ResourceOwner) ToMap() map[string]string {
	return map[string]string{
		"_id":       o.id,
		"email":     o.email,
		"firstName": o.firstName,
		"lastName":  o.lastName,
	}
}

// MarshalJSON encodes the owner in the shape of Webflow's user object.
func (o *ResourceOwner) MarshalJSON() ([]byte, error) {
	return json.Marshal(webflowUser{
		ID:        o.id,
		Email:     o.email,
		FirstName: o.firstName,
		LastName:  o.lastName,
	})
}
