package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tendant/contextauth/pkg/domain"
)

// RejectReason is the category of a refused login.
type RejectReason string

const (
	ReasonBadInput          RejectReason = "bad-input"
	ReasonMissingContext    RejectReason = "missing-context"
	ReasonNotFound          RejectReason = "not-found"
	ReasonUnverified        RejectReason = "unverified"
	ReasonOTPRequired       RejectReason = "otp-required"
	ReasonSuspended         RejectReason = "suspended"
	ReasonBadCredentials    RejectReason = "bad-credentials"
	ReasonHighRiskSuspended RejectReason = "high-risk-suspended"
	ReasonInternalError     RejectReason = "internal-error"
)

// Rejection is the only error Login returns. Until is set for the two
// suspension reasons.
type Rejection struct {
	Reason RejectReason
	Until  *time.Time
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("login rejected (%s): %v", r.Reason, r.Err)
	}
	return fmt.Sprintf("login rejected (%s)", r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func reject(reason RejectReason, err error) *Rejection {
	return &Rejection{Reason: reason, Err: err}
}

// LoginRequest is one login attempt.
type LoginRequest struct {
	Email    string
	Password string
	DeviceID string
	Location *domain.Location
	// OTPToken is the assertion returned by login code verification.
	OTPToken string
	// OTPVerified is the client supplied flag honoured only when
	// LoginConfig.TrustClientOTPFlag is set.
	OTPVerified bool
}

// LoginResult is returned for an authenticated attempt.
type LoginResult struct {
	Account *domain.Account
	Token   *domain.AccessToken
	Risk    RiskAssessment
	Learned *domain.LearnedLogin
}

// LoginConfig holds orchestrator configuration.
type LoginConfig struct {
	// Timeout bounds a whole login attempt.
	Timeout time.Duration
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
	// NotifyTimeout bounds the asynchronous alert sends.
	NotifyTimeout      time.Duration
	TrustClientOTPFlag bool
}

const (
	DefaultLoginTimeout  = 10 * time.Second
	DefaultCallTimeout   = 3 * time.Second
	DefaultNotifyTimeout = 15 * time.Second
)

// LoginService runs the adaptive login decision.
type LoginService struct {
	logger      *slog.Logger
	config      LoginConfig
	accounts    AccountStore
	credentials CredentialVerifier
	contexts    ContextStore
	scorer      *RiskScorer
	suspensions *SuspensionController
	sessions    *SessionService
	assertions  *AssertionService
	notifier    NotificationSender

	wg  sync.WaitGroup
	now func() time.Time
}

// LoginDeps groups the collaborators of LoginService.
type LoginDeps struct {
	Accounts    AccountStore
	Credentials CredentialVerifier
	Contexts    ContextStore
	Scorer      *RiskScorer
	Suspensions *SuspensionController
	Sessions    *SessionService
	Assertions  *AssertionService
	Notifier    NotificationSender
}

// NewLoginService creates a new login service.
func NewLoginService(logger *slog.Logger, config LoginConfig, deps LoginDeps) *LoginService {
	if config.Timeout == 0 {
		config.Timeout = DefaultLoginTimeout
	}
	if config.CallTimeout == 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	if config.NotifyTimeout == 0 {
		config.NotifyTimeout = DefaultNotifyTimeout
	}
	return &LoginService{
		logger:      logger,
		config:      config,
		accounts:    deps.Accounts,
		credentials: deps.Credentials,
		contexts:    deps.Contexts,
		scorer:      deps.Scorer,
		suspensions: deps.Suspensions,
		sessions:    deps.Sessions,
		assertions:  deps.Assertions,
		notifier:    deps.Notifier,
		now:         time.Now,
	}
}

// Login authenticates req. Every failure is a *Rejection.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	attempt, rej := s.validate(req)
	if rej != nil {
		return nil, rej
	}

	account, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (*domain.Account, error) {
		return s.accounts.FindByEmail(ctx, NormalizeEmail(req.Email))
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, reject(ReasonNotFound, err)
		}
		return nil, s.internal("account lookup failed", err)
	}
	if !account.EmailVerified {
		return nil, reject(ReasonUnverified, domain.ErrEmailNotVerified)
	}

	assertion, err := s.checkSecondFactor(req, account)
	if err != nil {
		return nil, reject(ReasonOTPRequired, err)
	}

	if suspended, until := s.suspensions.IsSuspended(account); suspended {
		s.logger.Info("login refused for suspended account", "user_id", account.ID, "until", until)
		return nil, &Rejection{Reason: ReasonSuspended, Until: until, Err: domain.ErrAccountSuspended}
	}

	// The assertion is spent on the first credential check it accompanies.
	if assertion != nil {
		_, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.assertions.Redeem(ctx, assertion)
		})
		if err != nil {
			if errors.Is(err, domain.ErrAssertionUsed) {
				return nil, reject(ReasonOTPRequired, err)
			}
			return nil, s.internal("assertion redeem failed", err)
		}
	}

	ok, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (bool, error) {
		return s.credentials.Check(ctx, account.ID, req.Password)
	})
	if err != nil {
		return nil, s.internal("credential check failed", err)
	}
	if !ok {
		s.recordFailure(ctx, account, attempt)
		return nil, reject(ReasonBadCredentials, domain.ErrInvalidCredentials)
	}

	uc, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (*domain.UserContext, error) {
		return s.contexts.Load(ctx, account.ID)
	})
	if err != nil {
		return nil, s.internal("context load failed", err)
	}

	risk := s.scorer.Score(attempt, uc)

	if s.scorer.ShouldSuspend(risk) {
		until, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (time.Time, error) {
			return s.suspensions.Suspend(ctx, account.ID)
		})
		if err != nil {
			return nil, s.internal("suspension write failed", err)
		}
		s.logger.Warn("high risk login, account suspended",
			"user_id", account.ID,
			"score", risk.Score,
			"factors", risk.Factors,
			"until", until,
		)
		s.dispatch(account.Email, NotifySuspensionAlert, map[string]string{
			"until":    until.Format(time.RFC3339),
			"deviceId": attempt.DeviceID,
			"location": formatLocation(attempt.Location),
		})
		return nil, &Rejection{Reason: ReasonHighRiskSuspended, Until: &until, Err: domain.ErrAccountSuspended}
	}

	if account.SuspendedUntil != nil {
		_, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.suspensions.Clear(ctx, account.ID)
		})
		if err != nil {
			return nil, s.internal("clearing stale suspension failed", err)
		}
		account.SuspendedUntil = nil
	}

	learned, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (*domain.LearnedLogin, error) {
		return s.contexts.RecordSuccessfulLogin(ctx, account.ID, attempt, s.now())
	})
	if err != nil {
		return nil, s.internal("recording login failed", err)
	}

	token, err := s.sessions.IssueAccessToken(account)
	if err != nil {
		return nil, s.internal("issuing access token failed", err)
	}

	s.logger.Info("login succeeded",
		"user_id", account.ID,
		"score", risk.Score,
		"new_device", learned.NewDevice,
		"new_location", learned.NewLocation,
	)
	s.dispatch(account.Email, NotifyLoginAlert, map[string]string{
		"time":        learned.Event.Timestamp.Format(time.RFC3339),
		"deviceId":    attempt.DeviceID,
		"location":    formatLocation(attempt.Location),
		"newDevice":   strconv.FormatBool(learned.NewDevice),
		"newLocation": strconv.FormatBool(learned.NewLocation),
	})

	return &LoginResult{
		Account: account,
		Token:   token,
		Risk:    risk,
		Learned: learned,
	}, nil
}

// Wait blocks until all dispatched notifications have finished.
func (s *LoginService) Wait() {
	s.wg.Wait()
}

func (s *LoginService) validate(req LoginRequest) (domain.LoginAttempt, *Rejection) {
	if req.Email == "" || req.Password == "" {
		return domain.LoginAttempt{}, reject(ReasonBadInput, errors.New("email and password are required"))
	}
	if err := ValidateEmail(req.Email); err != nil {
		return domain.LoginAttempt{}, reject(ReasonBadInput, err)
	}

	deviceID, err := SanitizeDeviceID(req.DeviceID)
	if err != nil {
		return domain.LoginAttempt{}, reject(ReasonBadInput, err)
	}
	if deviceID == "" || req.Location == nil {
		return domain.LoginAttempt{}, reject(ReasonMissingContext, domain.ErrMissingContext)
	}

	attempt := domain.LoginAttempt{DeviceID: deviceID, Location: *req.Location}
	if err := attempt.Validate(); err != nil {
		if errors.Is(err, domain.ErrMissingContext) {
			return domain.LoginAttempt{}, reject(ReasonMissingContext, err)
		}
		return domain.LoginAttempt{}, reject(ReasonBadInput, err)
	}
	return attempt, nil
}

// checkSecondFactor returns the assertion to redeem on success, or nil when
// the legacy client flag was accepted.
func (s *LoginService) checkSecondFactor(req LoginRequest, account *domain.Account) (*OTPAssertionClaims, error) {
	if req.OTPToken != "" && s.assertions != nil {
		return s.assertions.Validate(req.OTPToken, account)
	}
	if s.config.TrustClientOTPFlag && req.OTPVerified {
		return nil, nil
	}
	return nil, domain.ErrOTPRequired
}

func (s *LoginService) recordFailure(ctx context.Context, account *domain.Account, attempt domain.LoginAttempt) {
	_, err := callWithTimeout(ctx, s.config.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.contexts.RecordFailedLogin(ctx, account.ID, attempt, s.now())
	})
	if err != nil {
		s.logger.Warn("failed to record failed login", "user_id", account.ID, "error", err)
	}
}

func (s *LoginService) internal(msg string, err error) *Rejection {
	s.logger.Error(msg, "error", err)
	return reject(ReasonInternalError, err)
}

// dispatch sends a notification in the background. Failures are logged.
func (s *LoginService) dispatch(address string, kind NotificationKind, payload map[string]string) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()
		if err := s.notifier.Send(ctx, address, kind, payload); err != nil {
			s.logger.Warn("failed to send notification", "kind", kind, "error", err)
		}
	}()
}

// callWithTimeout runs fn under its own deadline. The parent deadline still
// applies.
func callWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(callCtx)
}

func formatLocation(loc domain.Location) string {
	return fmt.Sprintf("%.4f,%.4f", loc.Latitude, loc.Longitude)
}
