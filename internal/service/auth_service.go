package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/config"
	"github.com/formloom/formloom-backend/internal/repository"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32
	pbkdf2SaltLen    = 16

	defaultWorkspaceName = "my workspace"
)

type AuthService struct {
	userRepo      repository.UserRepository
	workspaceRepo repository.WorkspaceRepository
	jwtSecret     []byte
	jwtExpiry     time.Duration
}

func NewAuthService(userRepo repository.UserRepository, workspaceRepo repository.WorkspaceRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		jwtSecret:     []byte(cfg.JWTSecret),
		jwtExpiry:     time.Duration(cfg.JWTExpiry) * time.Hour,
	}
}

// SignUp registers the user and provisions their default workspace, then
// issues a token so the client is signed in immediately.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*repository.User, string, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &repository.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     name,
		Password: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, "", apperr.Conflict("An account with this email already exists")
		}
		return nil, "", err
	}

	workspace := &repository.Workspace{Name: defaultWorkspaceName, OwnerID: user.ID}
	if err := s.workspaceRepo.CreateWithOwner(ctx, workspace); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*repository.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if user == nil || !VerifyPassword(password, user.Password) {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Claims carried in the bearer token.
type TokenClaims struct {
	UserID string
	Email  string
}

func (s *AuthService) issueToken(user *repository.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates the signature and expiry and returns the embedded
// identity. Used by the auth middleware and the websocket handshake.
func (s *AuthService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("Invalid token")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("Invalid token")
	}
	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return &TokenClaims{UserID: id, Email: email}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("User no longer exists")
	}
	return user, nil
}

// HashPassword derives a PBKDF2-SHA256 key and encodes it as
// base64(salt):base64(hash).
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(hash), nil
}

func VerifyPassword(password, encoded string) bool {
	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(hash, expected) == 1
}
