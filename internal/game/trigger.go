package game

import (
	"kingdom-server/internal/models"
)

// Поддерживаемые операторы сравнения в условиях событий.
const (
	OpLTE = "<="
	OpGTE = ">="
	OpLT  = "<"
	OpGT  = ">"
	OpEQ  = "=="
	OpNE  = "!="
)

// fieldAliases - допустимые в каталоге синонимы полей.
var fieldAliases = map[string]models.StateField{
	"year": models.FieldYear,
}

// Matches проверяет, выполняются ли условия события для состояния страны.
// Пустые условия всегда выполняются. Все ограничения объединяются по И.
// Неизвестные поля и операторы игнорируются (считаются выполненными), чтобы каталог
// мог опережать код. Литерал неподходящего типа делает ограничение невыполненным.
func Matches(conditions models.TriggerConditions, state models.CountryState) bool {
	for fieldName, ops := range conditions {
		resolve, ok := resolveField(fieldName, state)
		if !ok {
			continue
		}
		for op, literal := range ops {
			if !compare(op, resolve, literal) {
				return false
			}
		}
	}
	return true
}

// fieldValue - значение поля состояния в сравнимом виде.
type fieldValue struct {
	n       int
	isLevel bool
}

func resolveField(name string, state models.CountryState) (fieldValue, bool) {
	field := models.StateField(name)
	if alias, ok := fieldAliases[name]; ok {
		field = alias
	}
	switch field {
	case models.FieldSupport:
		return fieldValue{n: state.Support}, true
	case models.FieldTreasury:
		return fieldValue{n: state.Treasury}, true
	case models.FieldYear:
		return fieldValue{n: state.Year}, true
	case models.FieldArmy:
		return fieldValue{n: state.Army.Rank(), isLevel: true}, true
	case models.FieldPeasants:
		return fieldValue{n: state.Peasants.Rank(), isLevel: true}, true
	default:
		return fieldValue{}, false
	}
}

func compare(op string, actual fieldValue, literal any) bool {
	switch op {
	case OpLTE, OpGTE, OpLT, OpGT, OpEQ, OpNE:
	default:
		// Неизвестный оператор.
		return true
	}

	var expected int
	if actual.isLevel {
		s, ok := literal.(string)
		if !ok {
			return false
		}
		expected = models.Level(s).Rank()
		if expected == 0 {
			return false
		}
	} else {
		n, err := toInt(literal)
		if err != nil {
			return false
		}
		expected = n
	}

	switch op {
	case OpLTE:
		return actual.n <= expected
	case OpGTE:
		return actual.n >= expected
	case OpLT:
		return actual.n < expected
	case OpGT:
		return actual.n > expected
	case OpEQ:
		return actual.n == expected
	default:
		return actual.n != expected
	}
}
