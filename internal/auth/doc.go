// Package auth provides authentication for the write side of the API.
//
// Accounts are registered with a username, an email and a password hashed
// with bcrypt. Logging in returns a signed HS256 bearer token whose subject
// is the username.
//
// # Configuration
//
//	AUTH_SECRET_KEY=<random string>  # Token signing key
//	AUTH_TOKEN_EXPIRY=30m            # Token lifetime
//	AUTH_BCRYPT_COST=12              # bcrypt cost factor
//	RATE_LIMIT_REQUESTS=5            # Requests per client per window
//	RATE_LIMIT_WINDOW=60s
//	REDIS_URL=redis://localhost:6379 # Shared limiter; in-memory when empty
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	tokens := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)
//	authService, err := auth.NewService(db, tokens, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService)
//	writes := router.Group("/api/v1", authMiddleware.Required())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
//
// # Failure signalling
//
// Login failures never reveal whether the account exists: unknown users,
// wrong passwords and inactive accounts all produce ErrInvalidCredentials,
// and the bearer middleware answers every rejected token with the same 401.
package auth
