package app

import (
	"context"

	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/config"
	"farmdirect/internal/payments"
)

// Verifier accepts locally issued HS256 tokens and, when an issuer is
// configured, ID tokens of the external provider.
func Verifier(ctx context.Context, cfg config.Config, issuer *auth.HMAC, log *zap.Logger) (auth.Verifier, error) {
	if cfg.OIDCIssuer == "" {
		return issuer, nil
	}
	provider, err := auth.NewOIDC(ctx, cfg.OIDCIssuer, cfg.OIDCAudience)
	if err != nil {
		return nil, err
	}
	log.Info("oidc verification enabled", zap.String("issuer", cfg.OIDCIssuer))
	return auth.Chain(provider, issuer), nil
}

func PaymentProcessor(cfg config.Config, log *zap.Logger) payments.Processor {
	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, payment intents disabled")
		return payments.Disabled{}
	}
	return payments.NewStripe(cfg.StripeSecretKey, cfg.PaymentCurrency)
}
