// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/policy"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	authRepo          repository.AuthRepository
	refreshTokenRepo  repository.RefreshTokenRepository
	pendingStore      repository.PendingRegistrationStore
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	googleAuthService service.OAuthAuthService
	adminPolicy       *policy.AdminPolicy
	notifier          *notifier
	authConfig        config.AuthConfig
	passwordPolicy    *config.PasswordStrengthConfig
	generateCode      func() (string, error)
	now               func() time.Time
	logger            *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager         repository.TransactionManager
	UserRepo          repository.UserRepository
	AuthRepo          repository.AuthRepository
	RefreshTokenRepo  repository.RefreshTokenRepository
	PendingStore      repository.PendingRegistrationStore
	Hasher            service.PasswordHasher
	TokenService      service.TokenService
	GoogleAuthService service.OAuthAuthService
	AdminPolicy       *policy.AdminPolicy
	Mailer            service.Mailer
	Config            *config.Config
	Logger            *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	var authConfig config.AuthConfig
	if params.Config.Auth != nil {
		authConfig = *params.Config.Auth
	}

	var mailTimeout time.Duration
	if params.Config.Mail != nil {
		mailTimeout = params.Config.Mail.Timeout
	}

	return &userService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		authRepo:          params.AuthRepo,
		refreshTokenRepo:  params.RefreshTokenRepo,
		pendingStore:      params.PendingStore,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		googleAuthService: params.GoogleAuthService,
		adminPolicy:       params.AdminPolicy,
		notifier:          newNotifier(params.Mailer, nil, mailTimeout, params.Logger),
		authConfig:        authConfig,
		passwordPolicy:    params.Config.PasswordStrength,
		generateCode:      generateVerificationCode,
		now:               time.Now,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates a sign-up, parks it in the pending store and emails a code.
// No user row exists until the code is confirmed.
func (srv *userService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := normalizeEmail(input.Email)

	if err := validatePasswordStrength(srv.passwordPolicy, input.Password); err != nil {
		return nil, err
	}

	_, err := srv.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, errors.WithStack(domainerrors.ErrUserAlreadyExists)
	}
	if !errors.Is(err, domainerrors.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check existing user")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	pending := &entity.PendingRegistration{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
		CreatedAt:    srv.now(),
	}

	if err := srv.issueVerificationCode(ctx, pending); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Registration pending verification", slog.String("email", email))

	return &usecase.RegisterOutput{Email: email, ExpiresIn: srv.authConfig.OTPTTL}, nil
}

// ResendVerification replaces the code of a pending sign-up and restarts its TTL.
// Unknown addresses get the same answer so the endpoint does not reveal sign-ups.
func (srv *userService) ResendVerification(ctx context.Context, email string) (*usecase.RegisterOutput, error) {
	email = normalizeEmail(email)
	output := &usecase.RegisterOutput{Email: email, ExpiresIn: srv.authConfig.OTPTTL}

	pending, err := srv.pendingStore.Get(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pending registration")
	}
	if pending == nil {
		srv.log(ctx).Debug("No pending registration to resend", slog.String("email", email))

		return output, nil
	}

	pending.Attempts = 0
	if err := srv.issueVerificationCode(ctx, pending); err != nil {
		return nil, err
	}

	return output, nil
}

func (srv *userService) issueVerificationCode(ctx context.Context, pending *entity.PendingRegistration) error {
	code, err := srv.generateCode()
	if err != nil {
		return errors.Wrap(err, "failed to generate verification code")
	}

	codeHash, err := srv.hasher.Hash(code)
	if err != nil {
		return errors.Wrap(err, "failed to hash verification code")
	}
	pending.CodeHash = codeHash

	if err := srv.pendingStore.Put(ctx, pending, srv.authConfig.OTPTTL); err != nil {
		return errors.Wrap(err, "failed to store pending registration")
	}

	err = srv.notifier.sendWithRetry(ctx, service.MailTemplateVerificationCode, pending.Email, map[string]any{
		"Name":             pending.Name,
		"Code":             code,
		"ExpiresInMinutes": int(srv.authConfig.OTPTTL / time.Minute),
	})
	if err != nil {
		srv.log(ctx).Error("Failed to send verification code", slog.String("email", pending.Email), slog.Any("error", err))

		return domainerrors.ErrNotificationFailed.WrapMessage(err.Error())
	}

	return nil
}

// VerifyEmail confirms the code, creates the verified account and logs it in.
func (srv *userService) VerifyEmail(ctx context.Context, input usecase.VerifyEmailInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)

	pending, err := srv.pendingStore.Get(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pending registration")
	}
	if pending == nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidVerificationCode)
	}

	maxAttempts := srv.authConfig.OTPMaxAttempts
	if maxAttempts > 0 && pending.Attempts >= maxAttempts {
		srv.discardPending(ctx, email)

		return nil, errors.WithStack(domainerrors.ErrTooManyAttempts)
	}

	if !srv.hasher.Check(input.Code, pending.CodeHash) {
		attempts, err := srv.pendingStore.IncrementAttempts(ctx, email)
		if err != nil {
			return nil, errors.Wrap(err, "failed to count verification attempt")
		}
		if maxAttempts > 0 && attempts >= maxAttempts {
			srv.discardPending(ctx, email)
			srv.log(ctx).Warn("Verification attempts exhausted", slog.String("email", email))

			return nil, errors.WithStack(domainerrors.ErrTooManyAttempts)
		}

		return nil, errors.WithStack(domainerrors.ErrInvalidVerificationCode)
	}

	user := &entity.User{
		Email:      pending.Email,
		Name:       pending.Name,
		IsVerified: true,
	}

	var output *usecase.LoginOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewUserRepository().Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		err := repoFactory.NewAuthRepository().CreateAuthentication(ctx, &entity.Authentication{
			UserID:         user.ID,
			Provider:       entity.ProviderTypeEmail,
			ProviderUserID: user.Email,
			PasswordHash:   pending.PasswordHash,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create credential")
		}

		user.RegisterSuccessfulLogin(srv.now())
		if err := repoFactory.NewUserRepository().Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to stamp login")
		}

		output, err = srv.issueSession(ctx, repoFactory.NewRefreshTokenRepository(), user, input.ClientInfo)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to complete registration", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.discardPending(ctx, email)
	output.IsNewUser = true

	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID))
	srv.notifier.notifyWithRetry(ctx, service.MailTemplateWelcome, user.Email, map[string]any{"Name": user.Name})

	return output, nil
}

func (srv *userService) discardPending(ctx context.Context, email string) {
	if err := srv.pendingStore.Delete(ctx, email); err != nil {
		srv.log(ctx).Warn("Failed to delete pending registration", slog.String("email", email), slog.Any("error", err))
	}
}

// Login checks an email credential, applying the lockout policy to failures.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	now := srv.now()

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	if user.IsLocked(now) {
		srv.log(ctx).Warn("Login attempt on locked account", slog.Any("userID", user.ID))

		return nil, errors.WithStack(lockedError(user, now))
	}

	authRecord, err := srv.authRepo.FindAuthenticationByUser(ctx, user.ID, entity.ProviderTypeEmail)
	if errors.Is(err, repository.ErrAuthNotFound) {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find credential")
	}

	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		return nil, srv.recordFailedLogin(ctx, user, now)
	}

	if !user.IsVerified {
		return nil, errors.WithStack(domainerrors.ErrEmailNotVerified)
	}

	var output *usecase.LoginOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user.RegisterSuccessfulLogin(now)
		if err := repoFactory.NewUserRepository().Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to stamp login")
		}

		output, err = srv.issueSession(ctx, repoFactory.NewRefreshTokenRepository(), user, input.ClientInfo)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute login transaction")
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID))

	return output, nil
}

func (srv *userService) recordFailedLogin(ctx context.Context, user *entity.User, now time.Time) error {
	lockedUntil, err := srv.userRepo.RecordFailedLogin(ctx, user.ID, now, srv.authConfig.MaxFailedLogins, srv.authConfig.LockoutDuration)
	if err != nil {
		return errors.Wrap(err, "failed to record failed login")
	}

	if lockedUntil != nil {
		user.LockedUntil = lockedUntil
		srv.log(ctx).Warn("Account locked after failed logins",
			slog.Any("userID", user.ID),
			slog.Time("lockedUntil", *user.LockedUntil))

		return errors.WithStack(lockedError(user, now))
	}

	return errors.WithStack(domainerrors.ErrInvalidCredentials)
}

func lockedError(user *entity.User, now time.Time) error {
	if user.LockedUntil == nil {
		return domainerrors.ErrAccountLocked
	}

	return domainerrors.ErrAccountLocked.WithDetails("try again in " + util.FormatDuration(user.LockedUntil.Sub(now)))
}

// GoogleLogin signs in with a Google ID token, linking or creating the account as needed.
func (srv *userService) GoogleLogin(ctx context.Context, input usecase.GoogleLoginInput) (*usecase.LoginOutput, error) {
	googleUser, err := srv.googleAuthService.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage(err.Error())
	}
	if googleUser.Email == "" || !googleUser.EmailVerified {
		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("google account has no verified email")
	}

	now := srv.now()
	var (
		output  *usecase.LoginOutput
		created bool
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		authRepo := repoFactory.NewAuthRepository()

		user, isNew, err := srv.resolveGoogleUser(ctx, userRepo, authRepo, googleUser)
		if err != nil {
			return err
		}
		created = isNew

		if user.IsLocked(now) {
			return errors.WithStack(domainerrors.ErrAccountLocked)
		}

		user.RegisterSuccessfulLogin(now)
		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to stamp login")
		}

		output, err = srv.issueSession(ctx, repoFactory.NewRefreshTokenRepository(), user, input.ClientInfo)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute google login transaction")
	}

	output.IsNewUser = created
	srv.log(ctx).Info("User logged in with Google", slog.Any("userID", output.User.ID), slog.Bool("created", created))

	if created {
		srv.notifier.notifyWithRetry(ctx, service.MailTemplateWelcome, output.User.Email, map[string]any{"Name": output.User.Name})
	}

	return output, nil
}

// resolveGoogleUser finds the account behind a Google identity. An existing email account is
// linked and marked verified; otherwise a new verified account is created.
func (srv *userService) resolveGoogleUser(
	ctx context.Context,
	userRepo repository.UserRepository,
	authRepo repository.AuthRepository,
	googleUser *service.OAuthUser,
) (*entity.User, bool, error) {
	authRecord, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeGoogle, googleUser.ID)
	if err == nil {
		user, err := userRepo.FindByID(ctx, authRecord.UserID)

		return user, false, errors.Wrap(err, "failed to find linked user")
	}
	if !errors.Is(err, repository.ErrAuthNotFound) {
		return nil, false, errors.Wrap(err, "failed to find google credential")
	}

	email := normalizeEmail(googleUser.Email)
	isNew := false

	user, err := userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing, err := authRepo.FindAuthenticationByUser(ctx, user.ID, entity.ProviderTypeGoogle)
		if err == nil && existing.ProviderUserID != googleUser.ID {
			return nil, false, errors.WithStack(domainerrors.ErrGoogleAlreadyLinked)
		}
		if err != nil && !errors.Is(err, repository.ErrAuthNotFound) {
			return nil, false, errors.Wrap(err, "failed to check google credential")
		}
		user.IsVerified = true
		if user.Name == "" {
			user.Name = googleUser.Name
		}
	case errors.Is(err, domainerrors.ErrUserNotFound):
		user = &entity.User{Email: email, Name: googleUser.Name, IsVerified: true}
		if err := userRepo.Create(ctx, user); err != nil {
			return nil, false, errors.Wrap(err, "failed to create user")
		}
		isNew = true
	default:
		return nil, false, errors.Wrap(err, "failed to find user by email")
	}

	err = authRepo.CreateAuthentication(ctx, &entity.Authentication{
		UserID:         user.ID,
		Provider:       entity.ProviderTypeGoogle,
		ProviderUserID: googleUser.ID,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to link google credential")
	}

	return user, isNew, nil
}

// RefreshToken issues a new access token for a live session. Roles are recomputed so
// allow-list changes apply without a fresh login.
func (srv *userService) RefreshToken(ctx context.Context, refreshToken string) (*usecase.RefreshTokenOutput, error) {
	claims, err := srv.tokenService.ValidateToken(refreshToken)
	if err != nil || claims.Type != service.TokenTypeRefresh {
		return nil, errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
	}

	session, err := srv.refreshTokenRepo.FindRefreshTokenByHash(ctx, srv.tokenService.HashToken(refreshToken))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil, errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find session")
	}
	if session.UserID != claims.UserID || session.IsExpired(srv.now()) {
		return nil, errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
	}

	user, err := srv.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	accessToken, _, err := srv.tokenService.GenerateTokens(user.ID, srv.adminPolicy.RolesFor(user).ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := srv.refreshTokenRepo.TouchRefreshToken(ctx, session.ID); err != nil {
		srv.log(ctx).Warn("Failed to touch session", slog.Any("sessionID", session.ID), slog.Any("error", err))
	}

	return &usecase.RefreshTokenOutput{AccessToken: accessToken}, nil
}

// Logout ends the session holding refreshToken. Unknown tokens are ignored.
func (srv *userService) Logout(ctx context.Context, refreshToken string) error {
	err := srv.refreshTokenRepo.DeleteRefreshTokenByHash(ctx, srv.tokenService.HashToken(refreshToken))
	if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// issueSession generates tokens and stores the refresh token, evicting the oldest
// sessions beyond the configured limit.
func (srv *userService) issueSession(
	ctx context.Context,
	refreshTokenRepo repository.RefreshTokenRepository,
	user *entity.User,
	client usecase.ClientInfo,
) (*usecase.LoginOutput, error) {
	roles := srv.adminPolicy.RolesFor(user)

	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user.ID, roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	session := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: srv.now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}
	if err := refreshTokenRepo.CreateRefreshToken(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	if srv.authConfig.MaxActiveSessions > 0 {
		if err := refreshTokenRepo.DeleteOldestRefreshTokens(ctx, user.ID, srv.authConfig.MaxActiveSessions); err != nil {
			return nil, errors.Wrap(err, "failed to evict old sessions")
		}
	}

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		Roles:        roles,
	}, nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
