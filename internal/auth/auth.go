package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role is a closed enumeration of user roles
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Identity is a verified caller. It is produced only by the gate; the rest
// of the codebase never sees the raw credential.
type Identity struct {
	UID  string `json:"uid"`
	Role Role   `json:"role"`
	// Verified is the login service's identity-verification attestation.
	// It travels in the signed token; callers can never self-attest it.
	Verified bool `json:"verified"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Claims is the session token payload
type Claims struct {
	UID      string `json:"uid"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// Gate verifies session credentials and enforces role requirements. It is
// read-only: no call through the gate mutates any state.
type Gate struct {
	secret []byte
}

// NewGate creates a gate verifying tokens signed with the given secret
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authorize resolves an opaque session credential to a verified identity and
// checks it against the required roles. An empty role list means any
// authenticated user. Returns ErrUnauthenticated for missing/invalid/expired
// credentials and ErrForbidden for a valid credential with the wrong role.
func (g *Gate) Authorize(credential string, roles ...Role) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UID == "" {
		return Identity{}, ErrUnauthenticated
	}

	identity := Identity{UID: claims.UID, Role: parseRole(claims.Role), Verified: claims.Verified}

	if len(roles) == 0 {
		return identity, nil
	}
	for _, r := range roles {
		if identity.Role == r {
			return identity, nil
		}
	}
	return Identity{}, ErrForbidden
}

// IssueToken signs a session token for the given user. The portal's login
// service is the normal issuer; this exists for tooling and tests.
func (g *Gate) IssueToken(uid string, role Role, verified bool, lifespan time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UID:      uid,
		Role:     string(role),
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return t.SignedString(g.secret)
}

func parseRole(raw string) Role {
	switch Role(strings.ToUpper(raw)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSeller:
		return RoleSeller
	default:
		// unknown or empty roles fall back to the least-privileged role
		return RoleBuyer
	}
}

// BearerToken extracts the bearer credential from a request, or "" if absent
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
