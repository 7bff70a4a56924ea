package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kyc-hub/models"
)

const minPasswordLength = 8

var validate = validator.New()

// Mailer delivers one-time passwords
type Mailer interface {
	SendOTP(ctx context.Context, toEmail, otp string) error
}

type AuthConfig struct {
	OTPLength        int
	OTPTTL           time.Duration
	AllowAdminSignup bool
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// Session is handed out after a successful login or OTP verification
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AuthService struct {
	users   UserStore
	otps    OTPStore
	revoker TokenRevoker
	tokens  *TokenService
	mailer  Mailer
	audit   *AuditService
	cfg     AuthConfig
	log     *zap.Logger
	clock   func() time.Time
}

func NewAuthService(users UserStore, otps OTPStore, revoker TokenRevoker, tokens *TokenService, mailer Mailer,
	audit *AuditService, cfg AuthConfig, log *zap.Logger) *AuthService {
	if cfg.OTPLength <= 0 {
		cfg.OTPLength = 6
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	return &AuthService{
		users:   users,
		otps:    otps,
		revoker: revoker,
		tokens:  tokens,
		mailer:  mailer,
		audit:   audit,
		cfg:     cfg,
		log:     log,
		clock:   time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Signup creates an unverified account and mails its first OTP
func (s *AuthService) Signup(ctx context.Context, in SignupInput, ip string) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	role := models.RoleUser
	if in.Role == models.RoleAdmin && s.cfg.AllowAdminSignup {
		role = models.RoleAdmin
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.sendOTP(ctx, email); err != nil {
		// the account exists; the user can ask for another code
		s.log.Error("failed to send signup OTP", zap.String("email", email), zap.Error(err))
	}
	s.audit.Record(ctx, u.ID.Hex(), models.ActionSignup, map[string]interface{}{"email": email, "role": role}, ip)
	return u, nil
}

func (s *AuthService) sendOTP(ctx context.Context, email string) error {
	code, err := GenerateOTP(s.cfg.OTPLength)
	if err != nil {
		return err
	}
	if err := s.otps.Save(ctx, email, code, s.cfg.OTPTTL); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, code)
}

// Login checks credentials. Unverified accounts get a fresh OTP and ErrNotVerified.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*Session, error) {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		if err := s.sendOTP(ctx, email); err != nil {
			s.log.Error("failed to send login OTP", zap.String("email", email), zap.Error(err))
		}
		return nil, ErrNotVerified
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, u.ID.Hex(), models.ActionLogin, nil, ip)
	return sess, nil
}

// VerifyOTP consumes the code, marks the account verified and logs it in
func (s *AuthService) VerifyOTP(ctx context.Context, email, code, ip string) (*Session, error) {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.otps.Verify(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}
	if !u.IsVerified {
		if err := s.users.MarkVerified(ctx, u.ID); err != nil {
			return nil, err
		}
		u.IsVerified = true
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, u.ID.Hex(), models.ActionVerifyOTP, nil, ip)
	return sess, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	return s.sendOTP(ctx, email)
}

func (s *AuthService) openSession(ctx context.Context, u *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	u.LastLogin = &now
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// Authenticate parses a token, rejects revoked ones and refreshes the role
// from the stored user so role changes and deletions apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrInvalidToken)
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	claims.Role = u.Role
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next, ip string) error {
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if current == next {
		return fmt.Errorf("%w: new password must differ from the current one", ErrInvalidInput)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	s.audit.Record(ctx, userID.Hex(), models.ActionPasswordChg, nil, ip)
	return nil
}

// Logout revokes the token id until the token would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *Claims, ip string) error {
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.clock())
	}
	if ttl > 0 {
		if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
			return err
		}
	}
	s.audit.Record(ctx, claims.UserID, models.ActionLogout, nil, ip)
	return nil
}
