package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpLength = 6
	otpExpiry = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
)

type UserService interface {
	Register(ctx context.Context, name, phone, password string) (*models.User, error)
	Login(ctx context.Context, phone, password string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	VIPDomains(ctx context.Context, phone string) ([]string, error)
	SubmitPayment(ctx context.Context, payment *models.Payment) (alreadyGranted bool, err error)
	RequestPasswordReset(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) error
	ResetPassword(ctx context.Context, phone, otp, newPassword string) error
}

type userService struct {
	userRepo repository.UserRepository
	console  ApprovalConsole
	notifier Notifier
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, console ApprovalConsole, notifier Notifier, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		console:  console,
		notifier: notifier,
		log:      log,
	}
}

// Register creates the account and pushes the registration approval request
// to the console. The approval request and the welcome message are
// best-effort: the account exists either way.
func (s *userService) Register(ctx context.Context, name, phone, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Phone:        models.NormalizePhone(phone),
		PasswordHash: string(hash),
		VIP:          map[string]bool{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.console.NotifyRegistration(user); err != nil {
		s.log.Warn("failed to post registration approval request",
			zap.String("phone", user.Phone), zap.Error(err))
	}

	welcome := fmt.Sprintf("Bienvenue sur KaboreTech, %s ! Votre compte est créé. "+
		"Vos accès VIP seront activés après validation de votre paiement.", user.Name)
	if err := s.notifier.Send(user.Phone, welcome); err != nil {
		s.log.Warn("failed to send welcome message",
			zap.String("phone", user.Phone), zap.Error(err))
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.userRepo.GetByPhone(ctx, phone)
}

// VIPDomains lists the granted combinations as "<Domain> <Part>" strings,
// in catalog order.
func (s *userService) VIPDomains(ctx context.Context, phone string) ([]string, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	domains := []string{}
	for _, key := range entitlement.Catalog {
		if user.HasEntitlement(key.Flag) {
			domains = append(domains, fmt.Sprintf("%s %s", key.Domain, key.Part))
		}
	}
	return domains, nil
}

// SubmitPayment forwards a deposit reference to the approval console. When
// the entitlement is already granted it short-circuits without posting a
// review request.
func (s *userService) SubmitPayment(ctx context.Context, payment *models.Payment) (bool, error) {
	key, err := entitlement.Lookup(payment.Domain, payment.Part)
	if err != nil {
		return false, err
	}

	user, err := s.userRepo.GetByPhone(ctx, payment.Phone)
	if err != nil {
		return false, err
	}

	if user.HasEntitlement(key.Flag) {
		return true, nil
	}

	if err := s.console.NotifyPayment(user, payment); err != nil {
		return false, fmt.Errorf("failed to post payment review request: %w", err)
	}
	return false, nil
}

// RequestPasswordReset stores a fresh OTP with its expiry and delivers it
// over the notification channel.
func (s *userService) RequestPasswordReset(ctx context.Context, phone string) error {
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	expiresAt := time.Now().Add(otpExpiry)
	if err := s.userRepo.SetOTP(ctx, phone, otp, expiresAt); err != nil {
		return err
	}

	text := fmt.Sprintf("Votre code de vérification KaboreTech est %s. Il expire dans 5 minutes.", otp)
	if err := s.notifier.Send(models.NormalizePhone(phone), text); err != nil {
		return fmt.Errorf("failed to deliver otp: %w", err)
	}
	return nil
}

func (s *userService) VerifyOTP(ctx context.Context, phone, otp string) error {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	return checkOTP(user, otp)
}

// ResetPassword re-checks the OTP, swaps the hash and clears the OTP pair.
func (s *userService) ResetPassword(ctx context.Context, phone, otp, newPassword string) error {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if err := checkOTP(user, otp); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.ResetPassword(ctx, phone, string(hash))
}

func checkOTP(user *models.User, otp string) error {
	if user.OTP == "" || user.OTPExpiresAt == nil {
		return ErrInvalidOTP
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return ErrInvalidOTP
	}
	if user.OTP != otp {
		return ErrInvalidOTP
	}
	return nil
}

func generateOTP() (string, error) {
	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
