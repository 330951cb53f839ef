package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/tildelab/tildes-backend/internal/config"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown class code and a wrong
// password; the login surface does not distinguish them.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims extends JWT standard claims with the class the teacher runs.
type Claims struct {
	jwt.RegisteredClaims
	ClassCode string `json:"class_code"`
}

// AuthService handles teacher authentication, JWT, and session management.
// Its login success path is the only place besides the guarded setPhase and
// restart routes where a class phase is ever written.
type AuthService struct {
	cfg       *config.Config
	rdb       *redis.Client
	classRepo *repository.ClassRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, classRepo *repository.ClassRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, classRepo: classRepo}
}

// Authenticate validates class code + password. On success the class moves
// from Setup to Active (a no-op if it already advanced) and a teacher JWT is
// issued with its JTI registered in Redis.
func (s *AuthService) Authenticate(ctx context.Context, code, password string) (string, *model.Class, error) {
	class, err := s.classRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup class: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(class.CredentialHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if class.Phase == model.PhaseSetup {
		if err := s.classRepo.SetPhase(ctx, class.Code, model.PhaseActive); err != nil {
			return "", nil, fmt.Errorf("advance phase: %w", err)
		}
		class.Phase = model.PhaseActive
	}

	token, err := s.issueToken(ctx, class.Code)
	if err != nil {
		return "", nil, err
	}
	return token, class, nil
}

func (s *AuthService) issueToken(ctx context.Context, classCode string) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   classCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		ClassCode: classCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// A new login replaces the previous session.
	sessionKey := config.CacheKey.TeacherSessionKey(classCode)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a teacher JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI matches the active session.
func (s *AuthService) ValidateSession(ctx context.Context, classCode, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.TeacherSessionKey(classCode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}
