package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/pkg/logger"

	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const initDataExpTime = 24 * time.Hour

var xHandlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

type SocialService struct {
	repo     SocialRepository
	tasks    TaskCompleter
	botToken string
	debug    bool
}

func NewSocialService(repo SocialRepository, tasks TaskCompleter, botToken string, debug bool) *SocialService {
	return &SocialService{
		repo:     repo,
		tasks:    tasks,
		botToken: botToken,
		debug:    debug,
	}
}

// ConnectTelegram validates the mini-app init data against the bot token and
// links the Telegram account. Linking auto-completes the connect task.
func (s *SocialService) ConnectTelegram(ctx context.Context, userID int64, raw string) (*model.SocialConnection, error) {
	if !s.debug {
		if err := initdata.Validate(raw, s.botToken, initDataExpTime); err != nil {
			return nil, ErrInvalidInitData
		}
	}

	telegramID, telegramUsername, err := extractTelegramUser(raw)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	conn := &model.SocialConnection{
		ID:               uuid.New(),
		UserID:           userID,
		Platform:         model.PlatformTelegram,
		PlatformUserID:   strconv.FormatInt(telegramID, 10),
		PlatformUsername: telegramUsername,
		IsActive:         true,
		ConnectedAt:      time.Now().UTC(),
	}

	return s.connect(ctx, conn)
}

func extractTelegramUser(raw string) (int64, string, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return 0, "", err
	}

	var userData struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	if err := json.Unmarshal([]byte(values.Get("user")), &userData); err != nil {
		return 0, "", err
	}
	if userData.ID == 0 {
		return 0, "", fmt.Errorf("init data has no user id")
	}

	return userData.ID, userData.Username, nil
}

// ConnectX records an X handle. There is no OAuth collaborator; the handle
// itself is the platform id.
func (s *SocialService) ConnectX(ctx context.Context, userID int64, handle string) (*model.SocialConnection, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if !xHandlePattern.MatchString(handle) {
		return nil, fmt.Errorf("invalid x handle: %q", handle)
	}

	conn := &model.SocialConnection{
		ID:               uuid.New(),
		UserID:           userID,
		Platform:         model.PlatformX,
		PlatformUserID:   strings.ToLower(handle),
		PlatformUsername: handle,
		IsActive:         true,
		ConnectedAt:      time.Now().UTC(),
	}

	return s.connect(ctx, conn)
}

func (s *SocialService) connect(ctx context.Context, conn *model.SocialConnection) (*model.SocialConnection, error) {
	err := s.repo.UpsertConnection(ctx, conn)
	if err != nil {
		if errors.Is(err, repository.ErrConnectionTaken) {
			return nil, ErrConnectionTaken
		}
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	if taskID, ok := model.ConnectTaskFor(conn.Platform); ok {
		if err := s.tasks.AutoComplete(ctx, conn.UserID, taskID); err != nil {
			logger.Logger().Error("failed to auto-complete connect task",
				zap.Int64("user_id", conn.UserID),
				zap.String("task_id", taskID),
				zap.Error(err))
		}
	}

	return conn, nil
}

func (s *SocialService) Disconnect(ctx context.Context, userID int64, platform model.SocialPlatform) error {
	if !platform.IsValid() {
		return ErrUnsupportedPlatform
	}

	err := s.repo.DeactivateConnection(ctx, userID, platform)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

func (s *SocialService) ListConnections(ctx context.Context, userID int64) ([]*model.SocialConnection, error) {
	conns, err := s.repo.GetConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}
