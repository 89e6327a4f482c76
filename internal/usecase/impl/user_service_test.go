package impl

import (
	"context"
	"testing"

	"radar/internal/domain/entity"
	"radar/internal/domain/repository"
	mockRepo "radar/internal/mocks/repository"
	mockSvc "radar/internal/mocks/service"
	"radar/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUserService(
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	authRepo repository.AuthRepository,
	hasher *mockSvc.MockPasswordHasher,
	tokenService *mockSvc.MockTokenService,
) usecase.UserUsecase {
	return NewUserService(UserServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		AuthRepo:     authRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       newDiscardLogger(),
	})
}

func TestUserService_RegisterUser_Success(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "Password123!",
	}

	hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)

	txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)

			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(nil, repository.ErrUserNotFound)

			hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = uuid.New()
				}).
				Return(nil)

			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)

			_ = fn(mockFactory)
		}).
		Return(nil)

	output, err := service.RegisterUser(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, input.Email, output.User.Email)
	assert.Equal(t, entity.RoleAdmin, output.User.Role)
}

func TestUserService_RegisterUser_AlreadyExists(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "Password123!",
	}

	hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)

	txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)

			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(&entity.User{ID: uuid.New(), Email: input.Email}, nil)

			_ = fn(mockFactory)
		}).
		Return(assert.AnError)

	output, err := service.RegisterUser(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestUserService_RegisterUser_WeakPassword(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "weak",
	}

	hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(assert.AnError)

	output, err := service.RegisterUser(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestUserService_Login_Success(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "admin@example.com",
		Password: "Password123!",
	}

	user := &entity.User{ID: uuid.New(), Email: input.Email, Role: entity.RoleAdmin}
	authRecord := &entity.Authentication{UserID: user.ID, PasswordHash: "hashed"}

	userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(user, nil)
	authRepo.EXPECT().FindAuthenticationByUserID(ctx, user.ID).Return(authRecord, nil)
	hasher.EXPECT().Check(input.Password, authRecord.PasswordHash).Return(true)
	tokenService.EXPECT().GenerateAccessToken(user.ID, []string{string(entity.RoleAdmin)}).Return("token", nil)

	output, err := service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "token", output.AccessToken)
	assert.Equal(t, user.ID, output.User.ID)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "admin@example.com",
		Password: "wrong",
	}

	user := &entity.User{ID: uuid.New(), Email: input.Email, Role: entity.RoleAdmin}
	authRecord := &entity.Authentication{UserID: user.ID, PasswordHash: "hashed"}

	userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(user, nil)
	authRepo.EXPECT().FindAuthenticationByUserID(ctx, user.ID).Return(authRecord, nil)
	hasher.EXPECT().Check(input.Password, authRecord.PasswordHash).Return(false)

	output, err := service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestUserService_Login_UserNotFound(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := newTestUserService(txManager, userRepo, authRepo, hasher, tokenService)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "Password123!",
	}

	userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)

	output, err := service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
}
