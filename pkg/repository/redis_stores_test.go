package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/contextauth/pkg/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func loginCode(userID uuid.UUID, code string, ttl time.Duration) *domain.OneTimeCode {
	now := time.Now()
	expiresAt := now.Add(ttl)
	return &domain.OneTimeCode{
		UserID:    userID,
		Purpose:   domain.PurposeLoginOTP,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: &expiresAt,
	}
}

func TestCodesStore_PutAndConsume(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCodesStore(client, "test:")
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Put(ctx, loginCode(userID, "123456", 5*time.Minute)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !mr.Exists("test:code:login_otp:" + userID.String()) {
		t.Fatal("expected code hash to exist")
	}
	if mr.TTL("test:code:login_otp:"+userID.String()) <= 0 {
		t.Error("expected login code to carry a TTL")
	}

	ok, err := store.Consume(ctx, userID, domain.PurposeLoginOTP, "654321", time.Now())
	if err != nil || ok {
		t.Fatalf("wrong code: ok=%v err=%v", ok, err)
	}

	ok, err = store.Consume(ctx, userID, domain.PurposeLoginOTP, "123456", time.Now())
	if err != nil || !ok {
		t.Fatalf("right code: ok=%v err=%v", ok, err)
	}

	ok, err = store.Consume(ctx, userID, domain.PurposeLoginOTP, "123456", time.Now())
	if err != nil || ok {
		t.Fatalf("second consume: ok=%v err=%v", ok, err)
	}
	if mr.Exists("test:code_lookup:login_otp:123456") {
		t.Error("lookup key should be removed with the code")
	}
}

func TestCodesStore_ConsumeAfterExpiry(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewCodesStore(client, "")
	ctx := context.Background()
	userID := uuid.New()

	code := loginCode(userID, "123456", 5*time.Minute)
	if err := store.Put(ctx, code); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ok, err := store.Consume(ctx, userID, domain.PurposeLoginOTP, "123456", code.ExpiresAt.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expired code must not be accepted")
	}
}

func TestCodesStore_PutReplacesPreviousCode(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCodesStore(client, "")
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Put(ctx, loginCode(userID, "111111", time.Minute)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, loginCode(userID, "222222", time.Minute)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if mr.Exists("code_lookup:login_otp:111111") {
		t.Error("stale lookup key left behind")
	}
	if _, err := store.LookupByCode(ctx, domain.PurposeLoginOTP, "111111"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Errorf("expected ErrCodeNotFound for replaced code, got %v", err)
	}
	ok, _ := store.Consume(ctx, userID, domain.PurposeLoginOTP, "111111", time.Now())
	if ok {
		t.Error("replaced code must not be accepted")
	}
	ok, _ = store.Consume(ctx, userID, domain.PurposeLoginOTP, "222222", time.Now())
	if !ok {
		t.Error("current code should be accepted")
	}
}

func TestCodesStore_EmailCodeLookup(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCodesStore(client, "")
	ctx := context.Background()
	userID := uuid.New()

	code := &domain.OneTimeCode{
		UserID:   userID,
		Purpose:  domain.PurposeEmailVerification,
		Code:     "424242",
		IssuedAt: time.Now(),
	}
	if err := store.Put(ctx, code); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ttl := mr.TTL("code:email_verification:" + userID.String()); ttl != 0 {
		t.Errorf("email code should not expire, ttl = %v", ttl)
	}

	got, err := store.LookupByCode(ctx, domain.PurposeEmailVerification, "424242")
	if err != nil {
		t.Fatalf("LookupByCode failed: %v", err)
	}
	if got != userID {
		t.Errorf("LookupByCode = %v, want %v", got, userID)
	}

	if _, err := store.LookupByCode(ctx, domain.PurposeLoginOTP, "424242"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Errorf("purposes should not share lookups, got %v", err)
	}
}

func TestCodesStore_PutRefusesCodeHeldByAnotherUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewCodesStore(client, "")
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	emailCode := func(userID uuid.UUID, code string) *domain.OneTimeCode {
		return &domain.OneTimeCode{
			UserID:   userID,
			Purpose:  domain.PurposeEmailVerification,
			Code:     code,
			IssuedAt: time.Now(),
		}
	}

	if err := store.Put(ctx, emailCode(alice, "123456")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, emailCode(bob, "123456")); !errors.Is(err, domain.ErrCodeCollision) {
		t.Fatalf("expected ErrCodeCollision, got %v", err)
	}

	got, err := store.LookupByCode(ctx, domain.PurposeEmailVerification, "123456")
	if err != nil {
		t.Fatalf("LookupByCode failed: %v", err)
	}
	if got != alice {
		t.Errorf("LookupByCode = %v, want alice %v", got, alice)
	}
	ok, err := store.Consume(ctx, alice, domain.PurposeEmailVerification, "123456", time.Now())
	if err != nil || !ok {
		t.Errorf("alice's code should still be accepted, ok=%v err=%v", ok, err)
	}

	// Once consumed the value is free again.
	if err := store.Put(ctx, emailCode(bob, "123456")); err != nil {
		t.Fatalf("Put after consume failed: %v", err)
	}
	// Re-issuing the same value to its owner is allowed.
	if err := store.Put(ctx, emailCode(bob, "123456")); err != nil {
		t.Fatalf("Put to same owner failed: %v", err)
	}
}

func TestCodesStore_Throttle(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCodesStore(client, "")
	ctx := context.Background()

	ok, err := store.Throttle(ctx, "login_otp:abc", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first call: ok=%v err=%v", ok, err)
	}
	ok, err = store.Throttle(ctx, "login_otp:abc", time.Minute)
	if err != nil || ok {
		t.Fatalf("second call: ok=%v err=%v", ok, err)
	}

	mr.FastForward(time.Minute)

	ok, err = store.Throttle(ctx, "login_otp:abc", time.Minute)
	if err != nil || !ok {
		t.Fatalf("after window: ok=%v err=%v", ok, err)
	}
}

func TestAssertionsStore_MarkUsed(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewAssertionsStore(client, "test:")
	ctx := context.Background()

	ok, err := store.MarkUsed(ctx, "jti-1", 5*time.Minute)
	if err != nil || !ok {
		t.Fatalf("first use: ok=%v err=%v", ok, err)
	}
	ok, err = store.MarkUsed(ctx, "jti-1", 5*time.Minute)
	if err != nil || ok {
		t.Fatalf("second use: ok=%v err=%v", ok, err)
	}

	ok, err = store.MarkUsed(ctx, "jti-2", 0)
	if err != nil || !ok {
		t.Fatalf("zero ttl: ok=%v err=%v", ok, err)
	}
	if mr.TTL("test:otp_assertion:jti-2") <= 0 {
		t.Error("marker should always expire")
	}
}

func TestAssertionsStore_MarkTOTPStepUsed(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewAssertionsStore(client, "test:")
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	ok, err := store.MarkTOTPStepUsed(ctx, alice, 57000000, 90*time.Second)
	if err != nil || !ok {
		t.Fatalf("first use: ok=%v err=%v", ok, err)
	}
	ok, err = store.MarkTOTPStepUsed(ctx, alice, 57000000, 90*time.Second)
	if err != nil || ok {
		t.Fatalf("replayed step: ok=%v err=%v", ok, err)
	}

	ok, err = store.MarkTOTPStepUsed(ctx, alice, 57000001, 90*time.Second)
	if err != nil || !ok {
		t.Fatalf("next step: ok=%v err=%v", ok, err)
	}
	ok, err = store.MarkTOTPStepUsed(ctx, bob, 57000000, 90*time.Second)
	if err != nil || !ok {
		t.Fatalf("other user: ok=%v err=%v", ok, err)
	}

	if mr.TTL("test:totp:"+alice.String()+":57000000") <= 0 {
		t.Error("step marker should expire")
	}
	mr.FastForward(90 * time.Second)
	if mr.Exists("test:totp:" + alice.String() + ":57000000") {
		t.Error("step marker should be gone after its ttl")
	}
}

func TestAssertionsStore_Unavailable(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewAssertionsStore(client, "")
	mr.Close()

	if _, err := store.MarkUsed(context.Background(), "jti-1", time.Minute); err == nil {
		t.Error("expected an error when redis is down")
	}
}
