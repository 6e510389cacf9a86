package game

import (
	"fmt"

	"kingdom-server/internal/models"
)

// Rules - настраиваемые параметры игры.
type Rules struct {
	Initial              models.CountryState // Состояние страны в начале каждого прохождения
	MaxYear              int                 // После этого года правитель умирает от старости
	MaxSelectionAttempts int                 // Сколько раз выбирать событие заново, если у выбранного нет вариантов
	IntroBlockType       string              // Тип последовательности блоков в начале прохождения
	YearlyEconomy        bool                // Начислять доход/расходы казны при смене года
}

// DefaultRules возвращает стандартные правила.
func DefaultRules() Rules {
	return Rules{
		Initial: models.CountryState{
			Support:  50,
			Treasury: 1000,
			Army:     models.LevelMedium,
			Peasants: models.LevelMedium,
			Year:     1,
		},
		MaxYear:              DefaultMaxYear,
		MaxSelectionAttempts: 5,
		IntroBlockType:       models.BlockTypeIntro,
	}
}

// Validate проверяет, что начальное состояние и ограничения корректны.
func (r Rules) Validate() error {
	if err := r.Initial.Validate(); err != nil {
		return fmt.Errorf("initial state: %w", err)
	}
	if r.Initial.Support == 0 || r.Initial.Treasury < 0 {
		return fmt.Errorf("initial state would end the game immediately")
	}
	if r.MaxYear < r.Initial.Year {
		return fmt.Errorf("max year %d is before initial year %d", r.MaxYear, r.Initial.Year)
	}
	if r.MaxSelectionAttempts < 1 {
		return fmt.Errorf("max selection attempts must be >= 1, got %d", r.MaxSelectionAttempts)
	}
	if r.IntroBlockType == "" {
		return fmt.Errorf("intro block type is empty")
	}
	return nil
}
