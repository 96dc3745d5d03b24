package useradmin_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	useradmin "github.com/stillwater-app/go-useradmin"
)

func TestDeleteUserRequestValidate(t *testing.T) {
	t.Run("accepts a user id", func(t *testing.T) {
		r := useradmin.DeleteUserRequest{UserID: "user-1"}
		assert.NoError(t, r.Validate())
	})

	t.Run("accepts an email", func(t *testing.T) {
		r := useradmin.DeleteUserRequest{Email: "user@example.com"}
		assert.NoError(t, r.Validate())
	})

	t.Run("requires one of id or email", func(t *testing.T) {
		r := useradmin.DeleteUserRequest{}
		assert.Error(t, r.Validate())
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		r := useradmin.DeleteUserRequest{Email: "not-an-email"}
		assert.Error(t, r.Validate())
	})
}

func TestDeleteUserRequestRevokeTokensDefault(t *testing.T) {
	t.Run("defaults to revoking sessions when the body omits the field", func(t *testing.T) {
		var r useradmin.DeleteUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_id":"user-1"}`), &r))
		assert.True(t, r.ShouldRevokeTokens())
	})

	t.Run("honors an explicit false", func(t *testing.T) {
		var r useradmin.DeleteUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_id":"user-1","revoke_tokens":false}`), &r))
		assert.False(t, r.ShouldRevokeTokens())
	})

	t.Run("honors an explicit true", func(t *testing.T) {
		var r useradmin.DeleteUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_id":"user-1","revoke_tokens":true}`), &r))
		assert.True(t, r.ShouldRevokeTokens())
	})

	t.Run("an omitted field still revokes sessions end to end", func(t *testing.T) {
		var r useradmin.DeleteUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_id":"user-1"}`), &r))

		provider := &MockIdentityProvider{}
		tombstones := &MockRevocationStore{}
		docs := &MockDocumentStore{}

		provider.On("GetUser", mock.Anything, "user-1").
			Return(&useradmin.Principal{ID: "user-1", Email: "one@example.com"}, nil)
		provider.On("RevokeSessions", mock.Anything, "user-1").Return(nil)
		tombstones.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		provider.On("DeleteUser", mock.Anything, "user-1").Return(nil)
		docs.On("DeleteBatch", mock.Anything, []string{"user-1"}).Return(nil)

		manager := useradmin.NewLifecycleManager(provider, tombstones, docs,
			useradmin.WithLifecycleLogger(noopLogger{}),
			useradmin.WithRetryPolicy(useradmin.RetryPolicy{MaxAttempts: 1}))

		res, err := manager.DeleteUser(context.Background(), r.UserID, r.ShouldRevokeTokens())
		require.NoError(t, err)
		assert.True(t, res.Steps.TokensRevoked)
		provider.AssertCalled(t, "RevokeSessions", mock.Anything, "user-1")
	})
}

func TestBulkDeleteRequestValidate(t *testing.T) {
	t.Run("accepts a target list", func(t *testing.T) {
		r := useradmin.BulkDeleteRequest{UserIDs: []string{"a", "b"}}
		assert.NoError(t, r.Validate())
	})

	t.Run("rejects an empty list", func(t *testing.T) {
		r := useradmin.BulkDeleteRequest{}
		assert.Error(t, r.Validate())
	})

	t.Run("defaults to revoking sessions when the body omits the field", func(t *testing.T) {
		var r useradmin.BulkDeleteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_ids":["a"]}`), &r))
		assert.True(t, r.ShouldRevokeTokens())

		require.NoError(t, json.Unmarshal([]byte(`{"user_ids":["a"],"revoke_tokens":false}`), &r))
		assert.False(t, r.ShouldRevokeTokens())
	})
}

func TestToggleStatusRequestValidate(t *testing.T) {
	t.Run("requires an explicit disabled value", func(t *testing.T) {
		r := useradmin.ToggleStatusRequest{}
		assert.Error(t, r.Validate())
	})

	t.Run("accepts both directions", func(t *testing.T) {
		yes, no := true, false
		assert.NoError(t, useradmin.ToggleStatusRequest{Disabled: &yes}.Validate())
		assert.NoError(t, useradmin.ToggleStatusRequest{Disabled: &no}.Validate())
	})
}

func TestBaseConfigDefaults(t *testing.T) {
	cfg := &useradmin.BaseConfig{}

	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, ":8572", cfg.GetAddress())
	assert.Equal(t, "sql", cfg.GetRevocationBackend())
	assert.Equal(t, 4, cfg.GetBulkWorkers())
	assert.Equal(t, 3, cfg.GetRetryMaxAttempts())
	assert.NotZero(t, cfg.GetRetryInitialInterval())
	assert.Empty(t, cfg.GetAdminEmails())

	assert.Error(t, cfg.Validate())
	assert.NoError(t, newTestConfig().Validate())
}

func TestBaseConfigParsesRetryInterval(t *testing.T) {
	cfg := &useradmin.BaseConfig{
		Operations: &useradmin.OperationsConfig{
			RetryInitialIntervalExpr: "250ms",
		},
	}
	assert.Equal(t, "250ms", cfg.GetRetryInitialInterval().String())
}
