package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*models.User // keyed by hex id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Phone == user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	user.ID = primitive.NewObjectID()
	if user.VIP == nil {
		user.VIP = map[string]bool{}
	}
	r.users[user.ID.Hex()] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range r.users {
		if u.Phone == models.NormalizePhone(phone) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetEntitlement(_ context.Context, id, flag string, value bool) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.VIP[flag] == value {
		return nil, repository.ErrAlreadyInState
	}
	u.VIP[flag] = value
	return u, nil
}

func (r *fakeUserRepo) SetOTP(_ context.Context, phone, otp string, expiresAt time.Time) error {
	u, err := r.GetByPhone(context.Background(), phone)
	if err != nil {
		return err
	}
	u.OTP = otp
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ResetPassword(_ context.Context, phone, passwordHash string) error {
	u, err := r.GetByPhone(context.Background(), phone)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	u.OTP = ""
	u.OTPExpiresAt = nil
	return nil
}

type fakeNotifier struct {
	sent []string // "phone: text"
}

func (n *fakeNotifier) Send(phone, text string) error {
	n.sent = append(n.sent, phone+": "+text)
	return nil
}

type fakeConsole struct {
	registrations []string
	payments      []string
}

func (c *fakeConsole) NotifyRegistration(user *models.User) error {
	c.registrations = append(c.registrations, user.Phone)
	return nil
}

func (c *fakeConsole) NotifyPayment(user *models.User, payment *models.Payment) error {
	c.payments = append(c.payments, user.Phone+":"+payment.Domain+":"+payment.Part)
	return nil
}

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo, *fakeConsole, *fakeNotifier) {
	t.Helper()
	repo := newFakeUserRepo()
	console := &fakeConsole{}
	notifier := &fakeNotifier{}
	return NewUserService(repo, console, notifier, zap.NewNop()), repo, console, notifier
}

func TestRegister_triggersApprovalRequest(t *testing.T) {
	svc, repo, console, notifier := newTestUserService(t)

	user, err := svc.Register(context.Background(), "Awa", "22670000000", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "+22670000000", user.Phone, "phone must be normalized")
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.Equal(t, []string{"+22670000000"}, console.registrations)
	require.Len(t, notifier.sent, 1, "one welcome message")

	stored, err := repo.GetByPhone(context.Background(), "+22670000000")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestRegister_duplicatePhone(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Issa", "22670000000", "other456")
	assert.ErrorIs(t, err, repository.ErrDuplicatePhone)
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "+22670000000", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Awa", user.Name)

	_, err = svc.Login(context.Background(), "+22670000000", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "+22699999999", "secret123")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubmitPayment_postsReviewRequest(t *testing.T) {
	svc, _, console, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	granted, err := svc.SubmitPayment(context.Background(), &models.Payment{
		Phone:    "+22670000000",
		NumDepot: "TX12345",
		Domain:   "Informatique",
		Part:     "Hardware",
		Mode:     "Orange Money",
		Price:    "5000",
	})
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, []string{"+22670000000:Informatique:Hardware"}, console.payments)
}

func TestSubmitPayment_shortCircuitsWhenAlreadyGranted(t *testing.T) {
	svc, repo, console, _ := newTestUserService(t)
	user, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	_, err = repo.SetEntitlement(context.Background(), user.ID.Hex(), "isInformatiqueHardware", true)
	require.NoError(t, err)

	granted, err := svc.SubmitPayment(context.Background(), &models.Payment{
		Phone:  "+22670000000",
		Domain: "Informatique",
		Part:   "Hardware",
	})
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Empty(t, console.payments, "no review request when already granted")
}

func TestSubmitPayment_rejectsUnknownCombination(t *testing.T) {
	svc, _, console, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	_, err = svc.SubmitPayment(context.Background(), &models.Payment{
		Phone:  "+22670000000",
		Domain: "Informatique",
		Part:   "Social",
	})
	assert.Error(t, err)
	assert.Empty(t, console.payments)
}

func TestVIPDomains(t *testing.T) {
	svc, repo, _, _ := newTestUserService(t)
	user, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	domains, err := svc.VIPDomains(context.Background(), "+22670000000")
	require.NoError(t, err)
	assert.Empty(t, domains)

	_, err = repo.SetEntitlement(context.Background(), user.ID.Hex(), "isMarketingSocial", true)
	require.NoError(t, err)
	_, err = repo.SetEntitlement(context.Background(), user.ID.Hex(), "isInformatiqueHardware", true)
	require.NoError(t, err)

	domains, err = svc.VIPDomains(context.Background(), "+22670000000")
	require.NoError(t, err)
	assert.Equal(t, []string{"Informatique Hardware", "Marketing Social"}, domains, "catalog order")
}

func TestOTPLifecycle(t *testing.T) {
	svc, repo, _, notifier := newTestUserService(t)
	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)
	notifier.sent = nil

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "+22670000000"))
	require.Len(t, notifier.sent, 1, "otp delivered over the notification channel")

	user, err := repo.GetByPhone(context.Background(), "+22670000000")
	require.NoError(t, err)
	require.Len(t, user.OTP, 6)
	require.NotNil(t, user.OTPExpiresAt)
	assert.Contains(t, notifier.sent[0], user.OTP)

	assert.ErrorIs(t, svc.VerifyOTP(context.Background(), "+22670000000", "000000"), ErrInvalidOTP)
	require.NoError(t, svc.VerifyOTP(context.Background(), "+22670000000", user.OTP))

	require.NoError(t, svc.ResetPassword(context.Background(), "+22670000000", user.OTP, "newpass789"))

	// otp pair cleared together with the password swap
	user, err = repo.GetByPhone(context.Background(), "+22670000000")
	require.NoError(t, err)
	assert.Empty(t, user.OTP)
	assert.Nil(t, user.OTPExpiresAt)

	_, err = svc.Login(context.Background(), "+22670000000", "newpass789")
	assert.NoError(t, err)
}

func TestVerifyOTP_expired(t *testing.T) {
	svc, repo, _, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), "Awa", "+22670000000", "secret123")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.SetOTP(context.Background(), "+22670000000", "123456", expired))

	assert.ErrorIs(t, svc.VerifyOTP(context.Background(), "+22670000000", "123456"), ErrInvalidOTP)
}
