package models

import "fmt"

// Level - уровень для перечислимых показателей страны (армия, крестьяне).
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid сообщает, является ли значение допустимым уровнем.
func (l Level) Valid() bool {
	return l.Rank() > 0
}

// Rank возвращает порядковый номер уровня (1..3) или 0 для неизвестного значения.
// Используется для сравнений в условиях триггеров.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// ParseLevel разбирает строку в Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidEffectValue, s)
	}
	return l, nil
}

// StateField - имя изменяемого или проверяемого поля состояния страны.
type StateField string

const (
	FieldSupport  StateField = "support"
	FieldTreasury StateField = "treasury"
	FieldArmy     StateField = "army"
	FieldPeasants StateField = "peasants"
	FieldYear     StateField = "current_year"
)

// FieldKind определяет, как эффект применяется к полю.
type FieldKind int

const (
	// FieldKindDelta - целочисленное поле, эффект прибавляется.
	FieldKindDelta FieldKind = iota + 1
	// FieldKindLevel - перечислимое поле, эффект заменяет значение.
	FieldKindLevel
)

// EffectFields - закрытый список полей, которые могут меняться эффектами событий.
// Год сюда не входит: он меняется только при завершении хода.
var EffectFields = map[StateField]FieldKind{
	FieldSupport:  FieldKindDelta,
	FieldTreasury: FieldKindDelta,
	FieldArmy:     FieldKindLevel,
	FieldPeasants: FieldKindLevel,
}

// CountryState - состояние страны игрока.
// Хранится в колонке players.state (JSONB), поэтому ключ года совместим со старым форматом.
type CountryState struct {
	Support  int   `json:"support"`
	Treasury int   `json:"treasury"`
	Army     Level `json:"army"`
	Peasants Level `json:"peasants"`
	Year     int   `json:"current_year"`
}

// Validate проверяет инварианты сохраняемого состояния.
func (s CountryState) Validate() error {
	if s.Support < 0 {
		return fmt.Errorf("%w: support must be >= 0, got %d", ErrInvalidState, s.Support)
	}
	if s.Year <= 0 {
		return fmt.Errorf("%w: year must be > 0, got %d", ErrInvalidState, s.Year)
	}
	if !s.Army.Valid() {
		return fmt.Errorf("%w: unknown army level %q", ErrInvalidState, s.Army)
	}
	if !s.Peasants.Valid() {
		return fmt.Errorf("%w: unknown peasants level %q", ErrInvalidState, s.Peasants)
	}
	return nil
}
