package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/repository"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/storage"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

const (
	msgInvalidEmail        = "Invalid email format"
	msgEmailTaken          = "Email already registered"
	msgOtpSent             = "OTP sent successfully"
	msgOtpAccepted         = "User Authenticated"
	msgOtpRejected         = "Invalid or Expired OTP"
	msgUsernameTaken       = "Username already exists"
	msgRegistrationPending = "Request sent. Await admin approval."
	msgInvalidAction       = "Invalid action"
	msgWorkerNotFound      = "Worker not found"
	msgNoAccountForEmail   = "No account found with this email"
	msgResetOtpSent        = "OTP sent to registered email address"
	msgResetOtpAccepted    = "OTP verified"
	msgAccountNotFound     = "Account not found"
	msgPasswordChanged     = "Password changed successfully"
	msgIDCardMissing       = "Invalid request. ID card image missing."
	msgIDCardNotImage      = "Invalid request. ID card must be an image."
	msgPasswordTooLong     = "Password must not exceed 72 bytes"
)

// OtpIssuer issues and consumes one-time codes for a single purpose.
type OtpIssuer interface {
	Issue(ctx context.Context, address string) (string, error)
	Verify(ctx context.Context, address, candidate string) (bool, error)
}

// bcrypt rejects passwords longer than this many bytes.
const maxPasswordBytes = 72

// PasswordHasher hashes and checks worker passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hashed, plain string) (bool, error)
}

// Upload is a named binary attached to a request.
type Upload struct {
	Name string
	Data []byte
}

func (u Upload) missing() bool {
	return strings.TrimSpace(u.Name) == "" || len(u.Data) == 0
}

// RegistrationInput is the profile submitted once the email has been verified.
type RegistrationInput struct {
	Name         string
	Email        string
	Phone        string
	Region       string
	Username     string
	Password     string
	IDCardNumber string
	IDCardImage  Upload
}

// IdentityService owns worker registration, approval and credential checks.
type IdentityService struct {
	accounts         repository.AccountRepository
	registrationOtps OtpIssuer
	resetOtps        OtpIssuer
	blobs            storage.BlobStore
	passwords        PasswordHasher
	dispatcher       events.Dispatcher
	validate         *validator.Validate
	logger           *zap.Logger

	// registerMu serializes the username check with the insert that follows it.
	registerMu sync.Mutex
}

// IdentityDependencies bundles collaborators for the identity service.
type IdentityDependencies struct {
	AccountRepo      repository.AccountRepository
	RegistrationOtps OtpIssuer
	ResetOtps        OtpIssuer
	Blobs            storage.BlobStore
	Passwords        PasswordHasher
	Dispatcher       events.Dispatcher
	Validate         *validator.Validate
	Logger           *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(deps IdentityDependencies) *IdentityService {
	validate := deps.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		accounts:         deps.AccountRepo,
		registrationOtps: deps.RegistrationOtps,
		resetOtps:        deps.ResetOtps,
		blobs:            deps.Blobs,
		passwords:        deps.Passwords,
		dispatcher:       deps.Dispatcher,
		validate:         validate,
		logger:           logger,
	}
}

// IsEmailTaken reports whether an account already uses exactly this email.
func (s *IdentityService) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return s.accounts.EmailExists(ctx, email)
}

// IsUsernameAvailable reports whether no account holds username, ignoring case.
func (s *IdentityService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.accounts.UsernameExistsFold(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CheckUsernameAvailable is the pre-submit availability probe offered to clients.
func (s *IdentityService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.IsUsernameAvailable(ctx, strings.TrimSpace(username))
}

// RequestRegistrationOtp mails a registration code to an unregistered address.
func (s *IdentityService) RequestRegistrationOtp(ctx context.Context, email string) (string, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", apperrors.NewValidationError(msgInvalidEmail, map[string]any{"email": email})
	}

	taken, err := s.IsEmailTaken(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperrors.NewConflict(msgEmailTaken, map[string]any{"email": email})
	}

	code, err := s.registrationOtps.Issue(ctx, email)
	if err != nil {
		return "", err
	}
	s.publishEvent(ctx, events.New(events.EventRegistrationOtpIssued, email, events.OtpIssuedPayload{
		Email: email,
		Code:  code,
	}))
	return msgOtpSent, nil
}

// VerifyRegistrationOtp consumes the registration code for email.
func (s *IdentityService) VerifyRegistrationOtp(ctx context.Context, email, code string) (string, error) {
	ok, err := s.registrationOtps.Verify(ctx, email, code)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.NewValidationError(msgOtpRejected, nil)
	}
	return msgOtpAccepted, nil
}

// CreateAccount stores the id card image and records a PENDING account.
func (s *IdentityService) CreateAccount(ctx context.Context, input RegistrationInput) (string, error) {
	if input.IDCardImage.missing() {
		return "", apperrors.NewValidationError(msgIDCardMissing, nil)
	}
	if err := checkPasswordLength(input.Password); err != nil {
		return "", err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	available, err := s.IsUsernameAvailable(ctx, input.Username)
	if err != nil {
		return "", err
	}
	if !available {
		return "", apperrors.NewConflict(msgUsernameTaken, map[string]any{"username": input.Username})
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	imageURL, err := s.blobs.Upload(ctx, input.IDCardImage.Name, input.IDCardImage.Data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return "", apperrors.NewValidationError(msgIDCardNotImage, nil)
		}
		return "", err
	}

	account := &domain.Account{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Region:         input.Region,
		Username:       input.Username,
		PasswordHash:   hash,
		IDCardNumber:   input.IDCardNumber,
		IDCardImageURL: imageURL,
		Status:         domain.AccountStatusPending,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		discardBlob(ctx, s.blobs, imageURL, s.logger)
		if dup, ok := repository.AsDuplicate(err); ok {
			if dup.Constraint == repository.AccountsEmailConstraint {
				return "", apperrors.NewConflict(msgEmailTaken, map[string]any{"email": input.Email})
			}
			return "", apperrors.NewConflict(msgUsernameTaken, map[string]any{"username": input.Username})
		}
		return "", err
	}

	s.logger.Info("worker registration recorded",
		zap.String("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("region", account.Region))
	return msgRegistrationPending, nil
}

// SetApprovalStatus records an admin decision and notifies the worker.
func (s *IdentityService) SetApprovalStatus(ctx context.Context, username, action string) (string, error) {
	next, ok := domain.ParseApprovalAction(action)
	if !ok {
		return "", apperrors.NewValidationError(msgInvalidAction, map[string]any{"action": action})
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgWorkerNotFound, map[string]any{"username": username})
		}
		return "", err
	}

	previous := account.Status
	if !domain.IsValidAccountTransition(previous, next) {
		s.logger.Warn("overwriting decided account status",
			zap.String("username", account.Username),
			zap.String("from", string(previous)),
			zap.String("to", string(next)))
	}

	if err := s.accounts.UpdateStatus(ctx, account.ID, next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgWorkerNotFound, map[string]any{"username": username})
		}
		return "", err
	}

	s.publishEvent(ctx, events.New(events.EventAccountStatusChanged, account.Username, events.AccountStatusChangedPayload{
		Username:  account.Username,
		Name:      account.Name,
		Email:     account.Email,
		OldStatus: previous,
		NewStatus: next,
	}))
	return fmt.Sprintf("Worker %s successfully", strings.ToLower(string(next))), nil
}

// Authenticate checks worker credentials. The identifier is matched first,
// then the password, and only then the approval status.
func (s *IdentityService) Authenticate(ctx context.Context, identifier, password string) (domain.AuthResult, error) {
	account, err := s.accounts.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AuthResult{}, nil
		}
		return domain.AuthResult{}, err
	}

	matches, err := s.passwords.Matches(account.PasswordHash, password)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("compare password: %w", err)
	}
	if !matches {
		return domain.AuthResult{}, nil
	}

	switch account.Status {
	case domain.AccountStatusApproved:
		return domain.AuthResult{Valid: true, Username: account.Username, Region: account.Region}, nil
	case domain.AccountStatusPending:
		return domain.AuthResult{Status: domain.LoginStatusPending}, nil
	case domain.AccountStatusRejected:
		return domain.AuthResult{Status: domain.LoginStatusRejected}, nil
	default:
		return domain.AuthResult{Status: domain.LoginStatusUnknown}, nil
	}
}

// RequestPasswordResetOtp mails a reset code to a registered address.
func (s *IdentityService) RequestPasswordResetOtp(ctx context.Context, email string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgNoAccountForEmail, map[string]any{"email": email})
		}
		return "", err
	}

	code, err := s.resetOtps.Issue(ctx, account.Email)
	if err != nil {
		return "", err
	}
	s.publishEvent(ctx, events.New(events.EventPasswordResetOtpIssued, account.Email, events.OtpIssuedPayload{
		Email:    account.Email,
		Code:     code,
		Username: account.Username,
	}))
	return msgResetOtpSent, nil
}

// VerifyPasswordResetOtp consumes the reset code for email.
func (s *IdentityService) VerifyPasswordResetOtp(ctx context.Context, email, code string) (string, error) {
	ok, err := s.resetOtps.Verify(ctx, email, code)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.NewValidationError(msgOtpRejected, nil)
	}
	return msgResetOtpAccepted, nil
}

// ChangePassword overwrites the password of the first account whose email
// matches ignoring case. Callers must have verified a reset code first.
func (s *IdentityService) ChangePassword(ctx context.Context, email, newPassword string) (string, error) {
	if err := checkPasswordLength(newPassword); err != nil {
		return "", err
	}

	account, err := s.accounts.GetByEmailFold(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgAccountNotFound, map[string]any{"email": email})
		}
		return "", err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgAccountNotFound, map[string]any{"email": email})
		}
		return "", err
	}
	return msgPasswordChanged, nil
}

// ListPendingAccounts returns accounts awaiting a decision in registration order.
func (s *IdentityService) ListPendingAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.ListByStatus(ctx, domain.AccountStatusPending)
}

// ListAllAccounts returns every account, newest registration first.
func (s *IdentityService) ListAllAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(accounts)-1; i < j; i, j = i+1, j-1 {
		accounts[i], accounts[j] = accounts[j], accounts[i]
	}
	return accounts, nil
}

// checkPasswordLength measures bytes, the unit bcrypt limits.
func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return apperrors.NewValidationError(msgPasswordTooLong, map[string]any{"max_bytes": maxPasswordBytes})
	}
	return nil
}

// discardBlob removes an upload whose owning record was never written.
func discardBlob(ctx context.Context, blobs storage.BlobStore, url string, logger *zap.Logger) {
	if err := blobs.Delete(ctx, url); err != nil {
		logger.Warn("orphaned upload left behind", zap.String("url", url), zap.Error(err))
	}
}

func (s *IdentityService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
