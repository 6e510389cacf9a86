package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"go.uber.org/zap"
)

// NarrativeSequencer ведет игрока по последовательностям блоков повествования (например, "intro").
type NarrativeSequencer struct {
	blocks interfaces.NarrativeBlockRepository
	logger *zap.Logger
}

func NewNarrativeSequencer(blocks interfaces.NarrativeBlockRepository, logger *zap.Logger) *NarrativeSequencer {
	return &NarrativeSequencer{
		blocks: blocks,
		logger: logger.Named("NarrativeSequencer"),
	}
}

// NextBlock возвращает первый непрочитанный блок последовательности, доступный в этом прохождении,
// или nil, если последовательность исчерпана.
func (s *NarrativeSequencer) NextBlock(ctx context.Context, blockType string, playthrough int, completedIDs []int64) (*models.NarrativeBlock, error) {
	blocks, err := s.blocks.ListBlocks(ctx, blockType, playthrough, completedIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s blocks: %w", models.ErrStorageUnavailable, blockType, err)
	}

	// Репозиторий уже фильтрует и сортирует, но уже прочитанный блок нельзя показать повторно ни при каких данных.
	slices.SortStableFunc(blocks, func(a, b models.NarrativeBlock) int {
		if c := cmp.Compare(a.SequenceOrder, b.SequenceOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, b := range blocks {
		if b.BlockType != blockType || !b.AvailableIn(playthrough) || slices.Contains(completedIDs, b.ID) {
			continue
		}
		return &b, nil
	}
	return nil, nil
}

// MarkCompleted отмечает блок прочитанным. Изменение только в памяти, сохраняет вызывающий.
// Возвращает false, если блок уже был отмечен.
func (s *NarrativeSequencer) MarkCompleted(record *models.PlayerRecord, blockID int64) bool {
	if record.HasCompletedBlock(blockID) {
		return false
	}
	record.CompletedNarrativeBlockIDs = append(record.CompletedNarrativeBlockIDs, blockID)
	return true
}

// GetBlock перечитывает блок из каталога. Возвращает models.ErrNotFound, если блока нет.
func (s *NarrativeSequencer) GetBlock(ctx context.Context, blockID int64) (*models.NarrativeBlock, error) {
	block, err := s.blocks.GetBlock(ctx, blockID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get block %d: %w", models.ErrStorageUnavailable, blockID, err)
	}
	return block, nil
}
