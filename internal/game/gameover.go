package game

import "kingdom-server/internal/models"

// GameOverReason - причина окончания прохождения.
type GameOverReason string

const (
	GameOverNone     GameOverReason = ""
	GameOverDeposed  GameOverReason = "deposed"  // Поддержка упала до нуля
	GameOverBankrupt GameOverReason = "bankrupt" // Казна ушла в минус
	GameOverOldAge   GameOverReason = "old_age"  // Правитель умер от старости
)

// DefaultMaxYear - последний год правления, после которого наступает смерть от старости.
const DefaultMaxYear = 40

// CheckGameOver проверяет условия конца игры. Порядок проверок важен: срабатывает первое.
func CheckGameOver(state models.CountryState, maxYear int) GameOverReason {
	switch {
	case state.Support <= 0:
		return GameOverDeposed
	case state.Treasury < 0:
		return GameOverBankrupt
	case state.Year > maxYear:
		return GameOverOldAge
	default:
		return GameOverNone
	}
}

// Message возвращает текст для игрока.
func (r GameOverReason) Message() string {
	switch r {
	case GameOverDeposed:
		return "Народ сверг вас из-за крайне низкой поддержки!"
	case GameOverBankrupt:
		return "Казна пуста! Государство обанкротилось."
	case GameOverOldAge:
		return "Вы правили долго и мудро, но годы берут свое. Вы покинули этот мир от старости."
	default:
		return ""
	}
}
