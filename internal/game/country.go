package game

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"kingdom-server/internal/models"
)

// Apply применяет набор эффектов к состоянию страны.
// Ключи обрабатываются независимо и в отсортированном порядке: ошибочный ключ пропускается,
// остальные применяются. Возвращает ошибки по пропущенным ключам (ErrUnknownEffectKey,
// ErrInvalidEffectValue), вызывающий их логирует.
func Apply(state *models.CountryState, effects models.EffectSet) []error {
	if state == nil || len(effects) == 0 {
		return nil
	}

	keys := make([]string, 0, len(effects))
	for k := range effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		if err := applyOne(state, key, effects[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func applyOne(state *models.CountryState, key string, value any) error {
	field := models.StateField(key)
	kind, ok := models.EffectFields[field]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownEffectKey, key)
	}

	switch kind {
	case models.FieldKindDelta:
		delta, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", models.ErrInvalidEffectValue, key, err)
		}
		switch field {
		case models.FieldSupport:
			state.Support += delta
		case models.FieldTreasury:
			state.Treasury += delta
		}
	case models.FieldKindLevel:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: field %q expects a level, got %T", models.ErrInvalidEffectValue, key, value)
		}
		level, err := models.ParseLevel(s)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		switch field {
		case models.FieldArmy:
			state.Army = level
		case models.FieldPeasants:
			state.Peasants = level
		}
	}
	return nil
}

// AdvanceYear увеличивает год ровно на единицу. Вызывается один раз за завершенный ход, после эффектов.
func AdvanceYear(state *models.CountryState) {
	state.Year++
}

// Snapshot переводит состояние в простую структуру для сохранения.
func Snapshot(state models.CountryState) map[string]any {
	return map[string]any{
		string(models.FieldSupport):  state.Support,
		string(models.FieldTreasury): state.Treasury,
		string(models.FieldArmy):     string(state.Army),
		string(models.FieldPeasants): string(state.Peasants),
		string(models.FieldYear):     state.Year,
	}
}

// Restore восстанавливает состояние из структуры, полученной Snapshot (или из JSON).
// Любое отсутствующее поле или значение вне допустимой области дает ErrInvalidState.
func Restore(data map[string]any) (models.CountryState, error) {
	var state models.CountryState
	if data == nil {
		return state, fmt.Errorf("%w: empty state", models.ErrInvalidState)
	}

	ints := map[models.StateField]*int{
		models.FieldSupport:  &state.Support,
		models.FieldTreasury: &state.Treasury,
		models.FieldYear:     &state.Year,
	}
	for field, dst := range ints {
		raw, ok := data[string(field)]
		if !ok {
			return models.CountryState{}, fmt.Errorf("%w: missing field %q", models.ErrInvalidState, field)
		}
		v, err := toInt(raw)
		if err != nil {
			return models.CountryState{}, fmt.Errorf("%w: field %q: %v", models.ErrInvalidState, field, err)
		}
		*dst = v
	}

	levels := map[models.StateField]*models.Level{
		models.FieldArmy:     &state.Army,
		models.FieldPeasants: &state.Peasants,
	}
	for field, dst := range levels {
		raw, ok := data[string(field)]
		if !ok {
			return models.CountryState{}, fmt.Errorf("%w: missing field %q", models.ErrInvalidState, field)
		}
		s, ok := raw.(string)
		if !ok {
			return models.CountryState{}, fmt.Errorf("%w: field %q is %T, not a level", models.ErrInvalidState, field, raw)
		}
		*dst = models.Level(s)
	}

	if err := state.Validate(); err != nil {
		return models.CountryState{}, err
	}
	return state, nil
}

// RestoreJSON разбирает состояние, сохраненное в JSONB-колонке.
func RestoreJSON(raw []byte) (models.CountryState, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.CountryState{}, fmt.Errorf("%w: %v", models.ErrInvalidState, err)
	}
	return Restore(data)
}

// toInt приводит числовое значение из JSON или Go-кода к int. Дробные числа не принимаются.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("non-integer number %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("non-integer number %q", n.String())
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
