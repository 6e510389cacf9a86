package game

import "math/rand/v2"

// RandSource - источник случайных чисел для взвешенного выбора.
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу, в тестах подставляется детерминированный источник.
type RandSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultRandSource возвращает потокобезопасный источник на основе глобального генератора.
func DefaultRandSource() RandSource {
	return globalSource{}
}

// PickWeighted выбирает индекс элемента пропорционально весу.
// Веса < 1 должны быть отфильтрованы вызывающим. Возвращает -1 для пустого списка.
func PickWeighted(weights []int, src RandSource) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	r := src.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
