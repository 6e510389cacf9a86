package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound           = errors.New("resource not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Country State Errors
	ErrUnknownEffectKey   = errors.New("unknown effect key")
	ErrInvalidEffectValue = errors.New("invalid effect value")
	ErrInvalidState       = errors.New("invalid country state")

	// Catalog Errors
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")

	// Gameplay Errors
	ErrNoActiveEvent       = errors.New("no active event for player")
	ErrInvalidChoiceIndex  = errors.New("invalid choice index")
	ErrNoContentAvailable  = errors.New("no content available")
	ErrPresentationFailed  = errors.New("failed to present content to player")
	ErrPlayerBusy          = errors.New("another turn is in progress for this player")
	ErrInvalidPlayerAction = errors.New("invalid player action")

	// Auth Errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)

// UserMessage возвращает короткое сообщение для игрока по ошибке хода.
// Тексты совпадают с теми, что бот показывал раньше.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoActiveEvent):
		return "Игра не найдена. Пожалуйста, начните заново командой /start."
	case errors.Is(err, ErrInvalidChoiceIndex):
		return "Ошибка обработки выбора."
	case errors.Is(err, ErrNoContentAvailable):
		return "Не удалось начать игру. Нет доступных событий."
	case errors.Is(err, ErrPlayerBusy):
		return "Предыдущий ход ещё обрабатывается, подождите."
	case errors.Is(err, ErrStorageUnavailable):
		return "Хранилище временно недоступно. Попробуйте позже."
	default:
		return "Что-то пошло не так. Попробуйте /start."
	}
}
