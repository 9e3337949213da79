package diary

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey    []byte
	signingMethod jwt.SigningMethod
	issuer        string
	logger        Logger
}

// NewTokenService creates a new TokenService instance. Only HMAC signing
// methods are accepted; an unknown method name falls back to HS256.
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	method := jwt.GetSigningMethod(cfg.GetSigningMethod())
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		method = jwt.SigningMethodHS256
	}

	return &TokenServiceImpl{
		signingKey:    []byte(cfg.GetSigningKey()),
		signingMethod: method,
		issuer:        cfg.GetIssuer(),
		logger:        logger,
	}
}

// Issue signs a fresh token of the given type: random jti, iat = now,
// exp = now + ttl.
func (ts *TokenServiceImpl) Issue(subject string, typ TokenType, ttl time.Duration) (string, *SessionClaims, error) {
	if !typ.Valid() {
		return "", nil, errors.New(fmt.Sprintf("unknown token type %q", typ), errors.CategoryInternal)
	}
	if ttl <= 0 {
		return "", nil, errors.New("token TTL must be positive", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Typ: typ,
	}
	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(ts.signingMethod, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, claims, nil
}

// Decode verifies signature and expiry, then checks the embedded type. Any
// alteration of subject, type, id, or expiry fails signature verification.
func (ts *TokenServiceImpl) Decode(raw string, expected TokenType) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		// Expired and malformed collapse into the same outward error.
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token decode could not map claims")
		return nil, ErrTokenInvalid
	}

	if claims.Typ != expected {
		return nil, ErrTokenTypeMismatch
	}

	return claims, nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
