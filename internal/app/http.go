package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/handler"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/provider"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/provider/facebook"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/provider/google"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/secret"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/strategy"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/config"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/middleware"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	keyring, err := buildKeyring(cfg)
	if err != nil {
		return nil, nil, err
	}

	sessionManager := session.NewManager(infra.sessions, infra.identities, cfg.SessionTTL)

	strategies := []strategy.Strategy{
		strategy.NewLocal(infra.identities, keyring),
	}
	var oauthProviders []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
		)
		if err != nil {
			return nil, nil, err
		}
		oauthProviders = append(oauthProviders, googleProvider)
		strategies = append(strategies, strategy.NewProvider(googleProvider.Name(), infra.identities))
	}

	if cfg.FacebookEnabled() {
		facebookProvider, err := facebook.New(
			cfg.FacebookAppID,
			cfg.FacebookAppSecret,
			cfg.FacebookCallbackURL,
		)
		if err != nil {
			return nil, nil, err
		}
		oauthProviders = append(oauthProviders, facebookProvider)
		strategies = append(strategies, strategy.NewProvider(facebookProvider.Name(), infra.identities))
	}

	providerRegistry := provider.NewRegistry(oauthProviders...)
	strategyRegistry := strategy.NewRegistry(strategies...)

	authGateway := gateway.New(infra.identities, strategyRegistry, sessionManager, keyring)

	authHandler := handler.NewHandler(authGateway, providerRegistry, sessionManager.TTL())
	secretsHandler := handler.NewSecretsHandler(infra.identities)

	authMiddleware := middleware.NewAuthMiddleware(authGateway)

	logger.Info("auth stack ready", map[string]any{
		"providers": providerRegistry.Names(),
		"scheme":    keyring.Primary().Scheme(),
	})

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Routes
	// ----------------------------

	protected := router.Group("/")
	protected.Use(middleware.GinRequireAuth(authMiddleware))

	secretsHandler.RegisterRoutes(protected)

	protected.GET("/me", func(c *gin.Context) {
		identity, _ := middleware.IdentityFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"identity_id": identity.ID,
			"username":    identity.Username,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.cleanup, nil
}

// buildKeyring assembles the credential codecs. The configured scheme
// becomes primary; when a cipher secret is present both codecs are
// registered so records written under either scheme keep verifying.
func buildKeyring(cfg config.Config) (*secret.Keyring, error) {
	bcryptCodec := secret.NewBcrypt()

	var cipherCodec *secret.CipherCodec
	if cfg.CipherSecret != "" {
		var err error
		cipherCodec, err = secret.NewCipher(cfg.CipherSecret)
		if err != nil {
			return nil, err
		}
	}

	switch cfg.PasswordScheme {
	case secret.SchemeBcrypt, "":
		if cipherCodec != nil {
			return secret.NewKeyring(bcryptCodec, cipherCodec), nil
		}
		return secret.NewKeyring(bcryptCodec), nil
	case secret.SchemeAESGCM:
		if cipherCodec == nil {
			return nil, fmt.Errorf("config: PASSWORD_SCHEME=%s requires CIPHER_SECRET", cfg.PasswordScheme)
		}
		return secret.NewKeyring(cipherCodec, bcryptCodec), nil
	default:
		return nil, fmt.Errorf("config: unknown PASSWORD_SCHEME %q", cfg.PasswordScheme)
	}
}
