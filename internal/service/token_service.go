package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/service/tokens"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidRefreshToken единая ошибка для всех отказов протокола refresh:
// подпись, срок, отсутствие в кеше, несовпадение с кешем. Детали причин наружу
// не отдаются.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService реализует протокол выпуска и обновления токенов. Refresh токен
// кешируется по id юзера и перезаписывается при каждом логине - старые refresh
// токены при этом перестают работать (одна активная сессия на юзера).
type TokenService struct {
	store         RefreshTokenStore
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenService(store RefreshTokenStore, accessSecret, refreshSecret []byte) *TokenService {
	return &TokenService{
		store:         store,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// Issue выпускает пару токенов для юзера и кеширует refresh токен с TTL равным
// его сроку жизни.
func (s *TokenService) Issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, accessErr := tokens.GenerateUserJWT(user.ID, user.Role, AccessTokenTTL, s.accessSecret)
	if accessErr != nil {
		return nil, fmt.Errorf("issuing token pair: %s", accessErr.Error())
	}

	refreshToken, refreshErr := tokens.GenerateUserJWT(user.ID, user.Role, RefreshTokenTTL, s.refreshSecret)
	if refreshErr != nil {
		return nil, fmt.Errorf("issuing token pair: %s", refreshErr.Error())
	}

	if cacheErr := s.store.Set(ctx, user.ID, refreshToken, RefreshTokenTTL); cacheErr != nil {
		return nil, fmt.Errorf("issuing token pair: %s", cacheErr.Error())
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh выпускает новый access токен по refresh токену. Токен обязан быть
// валидным И побайтово совпадать с закешированным для этого юзера - иначе
// ErrInvalidRefreshToken.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, validateErr := tokens.ValidateUserJWT(refreshToken, s.refreshSecret)
	if validateErr != nil {
		return "", fmt.Errorf("refreshing access token: %w", ErrInvalidRefreshToken)
	}

	cached, cacheErr := s.store.Get(ctx, claims.ID)
	if cacheErr != nil {
		if errors.Is(cacheErr, domain.ErrRecordNotFound) {
			return "", fmt.Errorf("refreshing access token: %w", ErrInvalidRefreshToken)
		}
		return "", fmt.Errorf("refreshing access token: %s", cacheErr.Error())
	}

	if subtle.ConstantTimeCompare([]byte(refreshToken), []byte(cached)) != 1 {
		return "", fmt.Errorf("refreshing access token: %w", ErrInvalidRefreshToken)
	}

	accessToken, accessErr := tokens.GenerateUserJWT(claims.ID, claims.Role, AccessTokenTTL, s.accessSecret)
	if accessErr != nil {
		return "", fmt.Errorf("refreshing access token: %s", accessErr.Error())
	}
	return accessToken, nil
}

// Revoke удаляет закешированный refresh токен юзера (logout). Невалидный токен -
// ErrInvalidRefreshToken, куки при этом все равно чистятся на транспортном уровне.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, validateErr := tokens.ValidateUserJWT(refreshToken, s.refreshSecret)
	if validateErr != nil {
		return fmt.Errorf("revoking refresh token: %w", ErrInvalidRefreshToken)
	}

	if delErr := s.store.Del(ctx, claims.ID); delErr != nil {
		return fmt.Errorf("revoking refresh token: %s", delErr.Error())
	}
	return nil
}
