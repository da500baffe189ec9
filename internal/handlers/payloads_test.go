package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}
	assert.NoError(t, valid.Validate())

	cases := map[string]RegisterRequest{
		"missing username": {Email: "alice@example.com", Password: "password123"},
		"bad email":        {Username: "alice", Email: "not-an-email", Password: "password123"},
		"short password":   {Username: "alice", Email: "alice@example.com", Password: "abc"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
}

func TestPublishRequestValidate(t *testing.T) {
	assert.NoError(t, PublishRequest{Name: "X", Pages: 10}.Validate())
	assert.Error(t, PublishRequest{Name: "", Pages: 10}.Validate())
	assert.Error(t, PublishRequest{Name: "X", Pages: 0}.Validate())
	assert.Error(t, PublishRequest{Name: "X", Pages: -3}.Validate())
}

func TestProfileUpdateRequestValidate(t *testing.T) {
	// Blank fields mean "keep current value".
	assert.NoError(t, ProfileUpdateRequest{}.Validate())
	assert.NoError(t, ProfileUpdateRequest{Username: "alice2"}.Validate())
	assert.Error(t, ProfileUpdateRequest{Email: "nope"}.Validate())
}
