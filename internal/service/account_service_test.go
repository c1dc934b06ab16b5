package service_test

import (
	"context"
	"testing"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/password"
	"github.com/dom/visa-booking-website/internal/repository/memory"
	"github.com/dom/visa-booking-website/internal/service"
	"github.com/dom/visa-booking-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     service.UpdateProfileInput
		wantErr   error
		wantEmail string
	}{
		{
			name:      "rename keeping email",
			input:     service.UpdateProfileInput{FirstName: "New", LastName: "Name", Email: "owner@example.com"},
			wantEmail: "owner@example.com",
		},
		{
			name:      "change to a free email",
			input:     service.UpdateProfileInput{FirstName: "New", LastName: "Name", Email: "Free@Example.com"},
			wantEmail: "free@example.com",
		},
		{
			name:    "change to an email owned by someone else",
			input:   service.UpdateProfileInput{FirstName: "New", LastName: "Name", Email: "other@example.com"},
			wantErr: service.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.NewRepositories()
			accountService := service.NewAccountService(repos.User, password.NewBcryptHasher(bcrypt.MinCost), logging.Discard())

			user, _ := testutil.NewUserBuilder().WithEmail("owner@example.com").Build(t, repos.User)
			testutil.NewUserBuilder().WithEmail("other@example.com").Build(t, repos.User)

			updated, err := accountService.UpdateProfile(ctx, user, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				stored, err := repos.User.GetByID(ctx, user.ID)
				require.NoError(t, err)
				assert.Equal(t, user.Email, stored.Email, "failed update must not change the record")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, updated.Email)
			assert.Equal(t, tt.input.FirstName, updated.FirstName)
			assert.Equal(t, tt.input.LastName, updated.LastName)
			assert.Equal(t, user.PasswordHash, updated.PasswordHash)
		})
	}
}

func TestAccountService_UpdateProfile_DeletedUser(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	accountService := service.NewAccountService(repos.User, password.NewBcryptHasher(bcrypt.MinCost), logging.Discard())

	user, _ := testutil.NewUserBuilder().Build(t, repos.User)
	require.NoError(t, repos.User.Delete(ctx, user.ID))

	_, err := accountService.UpdateProfile(ctx, user, service.UpdateProfileInput{
		FirstName: "Ghost",
		LastName:  "User",
		Email:     user.Email,
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAccountService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      service.ChangePasswordInput
		wantErr    error
		oldIsValid bool
	}{
		{
			name:  "correct current password",
			input: service.ChangePasswordInput{CurrentPassword: "original123", NewPassword: "replacement456"},
		},
		{
			name:       "wrong current password",
			input:      service.ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "replacement456"},
			wantErr:    service.ErrInvalidCurrentPassword,
			oldIsValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.NewRepositories()
			hasher := password.NewBcryptHasher(bcrypt.MinCost)
			accountService := service.NewAccountService(repos.User, hasher, logging.Discard())

			user, _ := testutil.NewUserBuilder().WithPassword("original123").Build(t, repos.User)

			err := accountService.ChangePassword(ctx, user, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			stored, err := repos.User.GetByID(ctx, user.ID)
			require.NoError(t, err)

			oldOK, err := hasher.Verify(ctx, "original123", stored.PasswordHash)
			require.NoError(t, err)
			newOK, err := hasher.Verify(ctx, tt.input.NewPassword, stored.PasswordHash)
			require.NoError(t, err)

			assert.Equal(t, tt.oldIsValid, oldOK)
			assert.Equal(t, !tt.oldIsValid, newOK)
			if tt.oldIsValid {
				assert.Equal(t, user.PasswordHash, stored.PasswordHash)
			}
		})
	}
}

func TestAccountService_ChangePassword_UsesStoredHash(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	accountService := service.NewAccountService(repos.User, hasher, logging.Discard())

	user, _ := testutil.NewUserBuilder().WithPassword("original123").Build(t, repos.User)

	// A stale copy from an earlier request carries no hash at all.
	stale := &domain.User{ID: user.ID, Email: user.Email}

	err := accountService.ChangePassword(ctx, stale, service.ChangePasswordInput{
		CurrentPassword: "original123",
		NewPassword:     "replacement456",
	})
	require.NoError(t, err)
}

func TestAccountService_ChangePassword_DeletedUser(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	accountService := service.NewAccountService(repos.User, password.NewBcryptHasher(bcrypt.MinCost), logging.Discard())

	user, _ := testutil.NewUserBuilder().WithPassword("original123").Build(t, repos.User)
	require.NoError(t, repos.User.Delete(ctx, user.ID))

	err := accountService.ChangePassword(ctx, user, service.ChangePasswordInput{
		CurrentPassword: "original123",
		NewPassword:     "replacement456",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
