package jwt

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/hive.go/ierrors"
)

var (
	ErrMissingToken  = ierrors.New("missing or malformed JWT")
	ErrInvalidToken  = ierrors.New("invalid JWT")
	ErrInvalidSecret = ierrors.New("invalid JWT secret")
)

const bearerPrefix = "Bearer "

// AuthClaims are the claims carried by the API tokens of a node.
type AuthClaims struct {
	jwt.StandardClaims
}

func (c *AuthClaims) compare(field string, expected string) bool {
	if field == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(field), []byte(expected)) == 1
}

// VerifySubject compares the subject of the claims with the expected one.
func (c *AuthClaims) VerifySubject(expected string) bool {
	return c.compare(c.Subject, expected)
}

// Auth issues and verifies HS256 tokens signed with a secret derived from the node key and a salt.
type Auth struct {
	subject        string
	sessionTimeout time.Duration
	nodeID         string
	secret         []byte
}

// NodeID identifies the node owning the private key in the issued tokens.
func NodeID(privateKey ed25519.PrivateKey) string {
	publicKey, _ := privateKey.Public().(ed25519.PublicKey)
	hash := blake2b.Sum256(publicKey)

	return hex.EncodeToString(hash[:])
}

// NewAuth creates an Auth for the given node. A sessionTimeout of 0 issues tokens that do not expire.
func NewAuth(salt string, sessionTimeout time.Duration, nodeID string, privateKey ed25519.PrivateKey) (*Auth, error) {
	if len(salt) == 0 {
		return nil, ierrors.Wrap(ErrInvalidSecret, "salt must not be empty")
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, ierrors.Wrapf(ErrInvalidSecret, "private key must have %d bytes, got %d", ed25519.PrivateKeySize, len(privateKey))
	}

	secret := blake2b.Sum256(append(privateKey.Seed(), []byte(salt)...))

	return &Auth{
		subject:        nodeID,
		sessionTimeout: sessionTimeout,
		nodeID:         nodeID,
		secret:         secret[:],
	}, nil
}

// IssueJWT issues a new token for the subject of the node.
func (j *Auth) IssueJWT() (string, error) {
	now := time.Now()

	stdClaims := jwt.StandardClaims{
		Subject:   j.subject,
		Issuer:    j.nodeID,
		Audience:  j.nodeID,
		Id:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
	}

	if j.sessionTimeout > 0 {
		stdClaims.ExpiresAt = now.Add(j.sessionTimeout).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &AuthClaims{StandardClaims: stdClaims})

	return token.SignedString(j.secret)
}

// ParseJWT parses and validates the token and checks that it was issued by this node.
func (j *Auth) ParseJWT(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierrors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return j.secret, nil
	})
	if err != nil {
		return nil, ierrors.Join(ErrInvalidToken, err)
	}

	if !token.Valid || !claims.VerifyIssuer(j.nodeID, true) || !claims.VerifyAudience(j.nodeID, true) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Middleware expects a bearer token in the Authorization header of every request that is not skipped.
func (j *Auth) Middleware(skipper middleware.Skipper, allow func(c echo.Context, subject string, claims *AuthClaims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) || len(header) == len(bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrMissingToken.Error()).SetInternal(ErrMissingToken)
			}

			claims, err := j.ParseJWT(header[len(bearerPrefix):])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error()).SetInternal(err)
			}

			if !allow(c, j.subject, claims) {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
			}

			return next(c)
		}
	}
}
