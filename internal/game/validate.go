package game

import (
	"errors"
	"fmt"
	"sort"

	"kingdom-server/internal/models"
)

// ValidateEffects проверяет набор эффектов до записи в каталог.
// Использует те же правила, что и Apply, на временном состоянии.
func ValidateEffects(effects models.EffectSet) error {
	scratch := DefaultRules().Initial
	if errs := Apply(&scratch, effects); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateConditions проверяет условия события: известные поля, операторы и тип литералов.
// Matches прощает неизвестные ключи, а админка нет.
func ValidateConditions(conditions models.TriggerConditions) error {
	fields := make([]string, 0, len(conditions))
	for name := range conditions {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var errs []error
	for _, name := range fields {
		value, ok := resolveField(name, models.CountryState{})
		if !ok {
			errs = append(errs, fmt.Errorf("unknown condition field %q", name))
			continue
		}
		for op, literal := range conditions[name] {
			switch op {
			case OpLTE, OpGTE, OpLT, OpGT, OpEQ, OpNE:
			default:
				errs = append(errs, fmt.Errorf("field %q: unknown operator %q", name, op))
				continue
			}
			if value.isLevel {
				s, ok := literal.(string)
				if !ok || !models.Level(s).Valid() {
					errs = append(errs, fmt.Errorf("field %q: expected a level, got %v", name, literal))
				}
			} else if _, err := toInt(literal); err != nil {
				errs = append(errs, fmt.Errorf("field %q: %v", name, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidCatalogEntry, errors.Join(errs...))
	}
	return nil
}
