package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contextauth/pkg/domain"
)

type codeKey struct {
	userID  uuid.UUID
	purpose domain.CodePurpose
}

// memoryCodeStore is an in-process CodeStore used by the tests.
type memoryCodeStore struct {
	mu        sync.Mutex
	codes     map[codeKey]domain.OneTimeCode
	throttled map[string]time.Time
	now       func() time.Time
}

func newMemoryCodeStore(now func() time.Time) *memoryCodeStore {
	return &memoryCodeStore{
		codes:     map[codeKey]domain.OneTimeCode{},
		throttled: map[string]time.Time{},
		now:       now,
	}
}

func (m *memoryCodeStore) Put(_ context.Context, code *domain.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, stored := range m.codes {
		if key.purpose == code.Purpose && key.userID != code.UserID && stored.Code == code.Code {
			return domain.ErrCodeCollision
		}
	}
	m.codes[codeKey{code.UserID, code.Purpose}] = *code
	return nil
}

func (m *memoryCodeStore) Consume(_ context.Context, userID uuid.UUID, purpose domain.CodePurpose, code string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := codeKey{userID, purpose}
	stored, ok := m.codes[key]
	if !ok || stored.Code != code || stored.IsExpired(now) {
		return false, nil
	}
	delete(m.codes, key)
	return true, nil
}

func (m *memoryCodeStore) LookupByCode(_ context.Context, purpose domain.CodePurpose, code string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, stored := range m.codes {
		if key.purpose == purpose && stored.Code == code {
			return key.userID, nil
		}
	}
	return uuid.Nil, domain.ErrCodeNotFound
}

func (m *memoryCodeStore) Throttle(_ context.Context, key string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.throttled[key]; ok && m.now().Sub(last) < window {
		return false, nil
	}
	m.throttled[key] = m.now()
	return true, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodeService(config CodeConfig) (*CodeService, *memoryCodeStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemoryCodeStore(clock.Now)
	svc := NewCodeService(config, store)
	svc.now = clock.Now
	return svc, store, clock
}

func TestCodeService_LoginOTPRoundTrip(t *testing.T) {
	svc, _, _ := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	ok, err := svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.False(t, ok, "code must be single use")
}

func TestCodeService_LoginOTPExpires(t *testing.T) {
	svc, _, clock := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	ok, err := svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeService_ValidJustBeforeExpiry(t *testing.T) {
	svc, _, clock := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)

	clock.Advance(10*time.Minute - time.Second)

	ok, err := svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodeService_WrongCodeDoesNotConsume(t *testing.T) {
	svc, _, clock := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		ok, err := svc.Verify(ctx, userID, wrong, domain.PurposeLoginOTP)
		require.NoError(t, err)
		assert.False(t, ok)
		clock.Advance(time.Minute)
	}

	ok, err := svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodeService_IssueOverwritesPreviousCode(t *testing.T) {
	svc, store, _ := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, userID, domain.PurposeLoginOTP)
	require.NoError(t, err)

	assert.Len(t, store.codes, 1)
	if first != second {
		ok, err := svc.Verify(ctx, userID, first, domain.PurposeLoginOTP)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := svc.Verify(ctx, userID, second, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodeService_PurposesAreSeparate(t *testing.T) {
	svc, _, _ := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeEmailVerification)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, userID, code, domain.PurposeLoginOTP)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeService_EmailVerificationDoesNotExpire(t *testing.T) {
	svc, store, clock := newTestCodeService(CodeConfig{})
	ctx := context.Background()
	userID := uuid.New()

	code, err := svc.Issue(ctx, userID, domain.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Nil(t, store.codes[codeKey{userID, domain.PurposeEmailVerification}].ExpiresAt)

	clock.Advance(365 * 24 * time.Hour)

	got, err := svc.VerifyByCode(ctx, code, domain.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.VerifyByCode(ctx, code, domain.PurposeEmailVerification)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestCodeService_VerifyRejectsMalformedCodes(t *testing.T) {
	svc, _, _ := newTestCodeService(CodeConfig{})
	ctx := context.Background()

	for _, code := range []string{"", "12345", "1234567", "12a456", " 12345"} {
		ok, err := svc.Verify(ctx, uuid.New(), code, domain.PurposeLoginOTP)
		require.NoError(t, err)
		assert.False(t, ok, "code %q", code)
	}
}

func TestCodeService_IssueLoginOTPThrottle(t *testing.T) {
	svc, _, clock := newTestCodeService(CodeConfig{RequestInterval: time.Minute})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.IssueLoginOTP(ctx, userID)
	require.NoError(t, err)

	_, err = svc.IssueLoginOTP(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrCodeRequestThrottled)

	clock.Advance(time.Minute)
	_, err = svc.IssueLoginOTP(ctx, userID)
	assert.NoError(t, err)
}

type failingCodeStore struct {
	memoryCodeStore
}

func (*failingCodeStore) Put(context.Context, *domain.OneTimeCode) error {
	return errors.New("connection refused")
}

func TestCodeService_StorageErrorsAreWrapped(t *testing.T) {
	svc := NewCodeService(CodeConfig{}, &failingCodeStore{})

	_, err := svc.Issue(context.Background(), uuid.New(), domain.PurposeLoginOTP)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func fixedCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func TestCodeService_IssueRedrawsCodeHeldByAnotherAccount(t *testing.T) {
	ctx := context.Background()
	svc := NewCodeService(CodeConfig{}, newMemoryCodeStore(time.Now))
	alice, bob := uuid.New(), uuid.New()

	svc.generate = fixedCodes("123456")
	_, err := svc.Issue(ctx, alice, domain.PurposeEmailVerification)
	require.NoError(t, err)

	svc.generate = fixedCodes("123456", "654321")
	code, err := svc.Issue(ctx, bob, domain.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, "654321", code)

	owner, err := svc.VerifyByCode(ctx, "123456", domain.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	owner, err = svc.VerifyByCode(ctx, "654321", domain.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestCodeService_IssueGivesUpWhenEveryDrawCollides(t *testing.T) {
	ctx := context.Background()
	svc := NewCodeService(CodeConfig{}, newMemoryCodeStore(time.Now))
	svc.generate = fixedCodes("123456")

	_, err := svc.Issue(ctx, uuid.New(), domain.PurposeEmailVerification)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, uuid.New(), domain.PurposeEmailVerification)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateNumericCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.True(t, code >= "100000" && code <= "999999", "code %s out of range", code)
	}
}
