package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Delivery channels for verification codes.
const (
	ChannelSMS  = "sms"
	ChannelCall = "call"
)

const (
	codeTTL    = 15 * time.Minute
	codeDigits = 6
)

var (
	// ErrInvalidOrExpiredCode means the submitted code did not match or had
	// expired. A mismatched code stays live until it expires.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	// ErrDeliveryFailed means the SMS/voice provider rejected the dispatch.
	// Callers re-request a code rather than the service retrying.
	ErrDeliveryFailed = errors.New("code delivery failed")
	// ErrChannelUnsupported means the configured provider cannot deliver on
	// the requested channel.
	ErrChannelUnsupported = errors.New("delivery channel not supported")
)

// CodeStore persists at most one live verification code per phone number.
type CodeStore interface {
	PutCode(ctx context.Context, phone, code string, expiresAt time.Time) error
	ClaimCode(ctx context.Context, phone, code string, now time.Time) (bool, error)
}

// Sender dispatches a verification message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message, channel string) error
}

// OTPService issues and verifies single-use, time-boxed phone codes.
type OTPService struct {
	codes  CodeStore
	sender Sender // nil enables development mode: codes are returned, not sent
	now    func() time.Time
}

func NewOTPService(codes CodeStore, sender Sender) *OTPService {
	return &OTPService{codes: codes, sender: sender, now: time.Now}
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// RequestCode generates a 6-digit code, stores it with a 15-minute expiry
// (replacing any outstanding code for the phone) and dispatches it. In
// development mode the code is returned to the caller instead of sent.
func (s *OTPService) RequestCode(ctx context.Context, phone, channel string) (devCode string, err error) {
	if channel != ChannelSMS && channel != ChannelCall {
		return "", ErrChannelUnsupported
	}
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.codes.PutCode(ctx, phone, code, s.now().Add(codeTTL)); err != nil {
		return "", err
	}
	if s.sender == nil {
		return code, nil
	}
	msg := fmt.Sprintf("Your library verification code is %s. It expires in 15 minutes.", code)
	if err := s.sender.Send(ctx, phone, msg, channel); err != nil {
		if errors.Is(err, ErrChannelUnsupported) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return "", nil
}

// VerifyCode consumes the code for the phone. Success invalidates the code;
// mismatch or expiry returns ErrInvalidOrExpiredCode.
func (s *OTPService) VerifyCode(ctx context.Context, phone, code string) error {
	ok, err := s.codes.ClaimCode(ctx, phone, code, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOrExpiredCode
	}
	return nil
}
