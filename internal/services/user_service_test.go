package services

import (
	"context"
	"testing"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mock UserRepository (using embedding to avoid implementing all methods)
type mockUserRepository struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockCreate      func(ctx context.Context, user *models.User) error
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
	mockUpdate      func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.mockFindByEmail != nil {
		return m.mockFindByEmail(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, user)
	}
	return nil
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	var created *models.User
	repo := &mockUserRepository{
		mockCreate: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			created = user
			return nil
		},
	}

	svc := NewUserService(repo)
	user, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Test Operator",
		Email:    "operator@example.com",
		Password: "secret123",
		Role:     models.RoleOperator,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "secret123", created.EncryptedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.EncryptedPassword), []byte("secret123")))
	assert.True(t, svc.VerifyPassword(user, "secret123"))
	assert.False(t, svc.VerifyPassword(user, "wrong"))
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 7, Email: email}, nil
		},
	}

	svc := NewUserService(repo)
	_, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Dup",
		Email:    "operator@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepository{})

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Update_ChangesRoleAndPassword(t *testing.T) {
	existing := &models.User{ID: 3, FullName: "Old Name", Role: models.RoleOperator, EncryptedPassword: "old-hash"}
	repo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return existing, nil
		},
	}

	svc := NewUserService(repo)
	role := models.RoleAdmin
	password := "new-secret"
	user, err := svc.Update(context.Background(), 3, UpdateUserInput{
		Role:     &role,
		Password: &password,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte("new-secret")))
}
