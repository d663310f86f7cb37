package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/notify/whatsapp"
)

// VerificationProvider is the phone-verification collaborator. Send
// issues a one-time code to the phone; Verify checks a candidate code.
// Implementations own their own challenge storage.
type VerificationProvider interface {
	Send(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// StaticProvider accepts one fixed code. It exists for development and
// tests; selection happens in configuration, never via a global
// conditional.
type StaticProvider struct {
	Code   string
	Logger *zap.Logger
}

// Send logs the would-be delivery.
func (p *StaticProvider) Send(ctx context.Context, phone string) error {
	p.Logger.Info("static otp issued", zap.String("phone", phone))
	return nil
}

// Verify compares against the fixed code.
func (p *StaticProvider) Verify(ctx context.Context, phone, code string) (bool, error) {
	return code == p.Code, nil
}

// WhatsAppProvider delivers a random six-digit code through the
// WhatsApp OTP template and keeps the pending challenge in Redis.
type WhatsAppProvider struct {
	client   *whatsapp.Client
	redis    *redis.Client
	template string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewWhatsAppProvider constructs the provider.
func NewWhatsAppProvider(client *whatsapp.Client, redisClient *redis.Client, template string, ttl time.Duration, logger *zap.Logger) *WhatsAppProvider {
	return &WhatsAppProvider{
		client:   client,
		redis:    redisClient,
		template: template,
		ttl:      ttl,
		logger:   logger,
	}
}

// Send stores a fresh challenge and dispatches the OTP template.
func (p *WhatsAppProvider) Send(ctx context.Context, phone string) error {
	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := p.redis.Set(ctx, challengeKey(phone), code, p.ttl).Err(); err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}
	if err := p.client.SendTemplate(ctx, strings.TrimPrefix(phone, "+"), p.template, []string{code}); err != nil {
		return err
	}
	p.logger.Info("otp sent", zap.String("phone", phone))
	return nil
}

// Verify consumes the pending challenge. Codes are single-use: a
// successful match deletes the stored value.
func (p *WhatsAppProvider) Verify(ctx context.Context, phone, code string) (bool, error) {
	stored, err := p.redis.Get(ctx, challengeKey(phone)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, nil
	}
	if err := p.redis.Del(ctx, challengeKey(phone)).Err(); err != nil {
		p.logger.Warn("otp challenge cleanup failed", zap.Error(err))
	}
	return true, nil
}

func challengeKey(phone string) string {
	return "otp:challenge:" + phone
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizePhone canonicalizes a raw phone input to a single
// E.164-like form (+<country code><10 digits>). Ten-digit local
// numbers get the default country code prefixed.
func NormalizePhone(raw, defaultCountryCode string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	num := digits.String()
	switch {
	case len(num) == 10:
		return "+" + defaultCountryCode + num
	case strings.HasPrefix(num, defaultCountryCode) && len(num) == len(defaultCountryCode)+10:
		return "+" + num
	case num == "":
		return ""
	default:
		return "+" + num
	}
}
