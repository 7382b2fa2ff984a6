package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"community/db"
	"community/models"
	"community/store"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

// IdentityService - адаптер провайдера аутентификации: регистрация,
// вход, определение текущего пользователя по токену, выход.
// Действующий пользователь везде передается явно, глобальной сессии нет.
type IdentityService struct{}

func NewIdentityService() *IdentityService {
	return &IdentityService{}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(stored, password string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return errors.New("invalid password format")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if hex.EncodeToString(hash) != parts[1] {
		return errors.New("invalid password")
	}
	return nil
}

// SignUp регистрирует пользователя и создает его профиль с никнеймом
func (is *IdentityService) SignUp(ctx context.Context, email, password, nickname string) (int64, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return 0, fmt.Errorf("%w: email and password are required", store.ErrValidation)
	}
	if strings.TrimSpace(nickname) == "" {
		return 0, fmt.Errorf("%w: nickname is required", store.ErrValidation)
	}

	var alreadyExists int64
	err := db.GetWriteDB(ctx).Model(&models.User{}).Where("email = ?", email).Count(&alreadyExists).Error
	if err != nil {
		return 0, fmt.Errorf("%w: check user: %v", store.ErrStore, err)
	}
	if alreadyExists > 0 {
		return 0, fmt.Errorf("%w: user already exists", store.ErrAuth)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("%w: hash password: %v", store.ErrStore, err)
	}

	user := models.User{
		Email:    email,
		Nickname: nickname,
		Password: passwordHash,
	}
	if err := db.GetWriteDB(ctx).Create(&user).Error; err != nil {
		return 0, fmt.Errorf("%w: create user: %v", store.ErrStore, err)
	}
	return user.ID, nil
}

// SignIn проверяет пароль и выдает новый токен, сбрасывая старые
func (is *IdentityService) SignIn(ctx context.Context, email, password string) (int64, string, error) {
	var user models.User
	err := db.GetWriteDB(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", fmt.Errorf("%w: invalid credentials", store.ErrAuth)
	}
	if err != nil {
		return 0, "", fmt.Errorf("%w: get user: %v", store.ErrStore, err)
	}

	if err := verifyPassword(user.Password, password); err != nil {
		return 0, "", fmt.Errorf("%w: invalid credentials", store.ErrAuth)
	}

	// Удаляем старые токены (если они есть)
	_ = is.SignOut(ctx, user.ID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return 0, "", fmt.Errorf("%w: generate token: %v", store.ErrStore, err)
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: user.ID,
		Token:  token,
	}).Error
	if err != nil {
		return 0, "", fmt.Errorf("%w: store token: %v", store.ErrStore, err)
	}
	return user.ID, token, nil
}

// CurrentUser возвращает ID пользователя по действующему токену
func (is *IdentityService) CurrentUser(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: token is empty", store.ErrAuth)
	}
	var userToken models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: token not recognized", store.ErrAuth)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: check token: %v", store.ErrStore, err)
	}
	return userToken.UserID, nil
}

// SignOut удаляет все токены пользователя
func (is *IdentityService) SignOut(ctx context.Context, userID int64) error {
	err := db.GetWriteDB(ctx).Where("user_id = ?", userID).Delete(&models.UserTokens{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete tokens: %v", store.ErrStore, err)
	}
	return nil
}
