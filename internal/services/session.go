package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mssola/user_agent"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var sessionLog = logger.New("SESSION")

var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is the persisted session: the identity plus device
// metadata from the login request. This is the one durable piece of
// local state; deleting it is what "logged out" means.
type SessionRecord struct {
	User       models.User `json:"user"`
	DeviceType string      `json:"deviceType,omitempty"`
	Browser    string      `json:"browser,omitempty"`
	OS         string      `json:"os,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// SessionService issues bearer tokens and keeps session records in
// Redis, keyed by user id.
type SessionService struct {
	redis *utils.RedisClient
	cfg   config.JWTConfig
}

func NewSessionService(redis *utils.RedisClient, cfg config.JWTConfig) *SessionService {
	return &SessionService{redis: redis, cfg: cfg}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

// Claims is the token payload. The middleware parses the same shape.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for a fresh session.
func (s *SessionService) IssueToken(user models.User) (string, error) {
	claims := &Claims{
		UserID:   user.UserID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Save stores the session record, stamped with the caller's device.
func (s *SessionService) Save(ctx context.Context, user models.User, userAgent string) error {
	record := SessionRecord{
		User:      user,
		CreatedAt: time.Now().UTC(),
	}

	if userAgent != "" {
		ua := user_agent.New(userAgent)
		if ua.Mobile() {
			record.DeviceType = "mobile"
		} else {
			record.DeviceType = "desktop"
		}
		record.Browser, _ = ua.Browser()
		record.OS = ua.OS()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, sessionKey(user.UserID), data, s.cfg.Expiry).Err(); err != nil {
		return sessionLog.Error("failed to save session for %s: %v", user.UserID, err)
	}
	return nil
}

// Get loads a session record, or ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, userID string) (*SessionRecord, error) {
	data, err := s.redis.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt session record for %s: %w", userID, err)
	}
	return &record, nil
}

// Delete removes the session record on logout.
func (s *SessionService) Delete(ctx context.Context, userID string) error {
	return s.redis.Del(ctx, sessionKey(userID)).Err()
}
