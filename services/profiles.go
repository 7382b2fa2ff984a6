package services

import (
	"context"
	"log"

	"community/db"
	"community/models"
)

// FallbackNickname подставляется, когда профиль автора не найден или нечитаем
const FallbackNickname = "anonymous"

type ProfileService struct{}

func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// ResolveNickname возвращает никнейм пользователя по его ID.
// Никогда не возвращает ошибку: отсутствующий или нечитаемый профиль
// деградирует до FallbackNickname, а не валит операцию вызывающего.
func (ps *ProfileService) ResolveNickname(ctx context.Context, userID int64) string {
	if userID <= 0 {
		return FallbackNickname
	}

	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if err != nil {
		log.Printf("DEBUG: nickname lookup failed for userID=%d: %v", userID, err)
		return FallbackNickname
	}
	if user.Nickname == "" {
		return FallbackNickname
	}
	return user.Nickname
}

// DisplayName - единое правило выбора отображаемого имени:
// денормализованный снапшот, если он есть, иначе живой поиск профиля,
// иначе FallbackNickname
func (ps *ProfileService) DisplayName(ctx context.Context, snapshot string, userID int64) string {
	if snapshot != "" {
		return snapshot
	}
	return ps.ResolveNickname(ctx, userID)
}
