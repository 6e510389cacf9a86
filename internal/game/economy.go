package game

import "kingdom-server/internal/models"

// Годовой доход от крестьян и содержание армии по уровням.
var (
	peasantIncome = map[models.Level]int{
		models.LevelLow:    300,
		models.LevelMedium: 600,
		models.LevelHigh:   1000,
	}
	armyUpkeep = map[models.Level]int{
		models.LevelLow:    100,
		models.LevelMedium: 300,
		models.LevelHigh:   700,
	}
)

// YearlyBalance возвращает изменение казны за год: доход с крестьян минус содержание армии.
func YearlyBalance(state models.CountryState) int {
	return peasantIncome[state.Peasants] - armyUpkeep[state.Army]
}

// ApplyYearlyEconomy начисляет годовой баланс в казну и возвращает его.
func ApplyYearlyEconomy(state *models.CountryState) int {
	balance := YearlyBalance(*state)
	state.Treasury += balance
	return balance
}
