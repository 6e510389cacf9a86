package database

import (
	"context"
	"errors"
	"fmt"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	blockFields = `id, block_type, text, image_url, button_text, sequence_order, is_final_in_sequence, required_playthrough`

	listBlocksQuery = `
        SELECT ` + blockFields + `
        FROM narrative_blocks
        WHERE block_type = $1
          AND (required_playthrough IS NULL OR required_playthrough = 0 OR required_playthrough = $2)
          AND NOT (id = ANY($3))
        ORDER BY sequence_order, id
    `
	getBlockByIDQuery  = `SELECT ` + blockFields + ` FROM narrative_blocks WHERE id = $1`
	listAllBlocksQuery = `SELECT ` + blockFields + ` FROM narrative_blocks ORDER BY block_type, sequence_order, id`
	createBlockQuery   = `
        INSERT INTO narrative_blocks (block_type, text, image_url, button_text, sequence_order, is_final_in_sequence, required_playthrough)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	deleteBlockQuery = `DELETE FROM narrative_blocks WHERE id = $1`
)

// Compile-time check to ensure pgNarrativeBlockRepository implements the interface
var _ interfaces.NarrativeBlockRepository = (*pgNarrativeBlockRepository)(nil)

type pgNarrativeBlockRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgNarrativeBlockRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.NarrativeBlockRepository {
	return &pgNarrativeBlockRepository{
		db:     db,
		logger: logger.Named("PgNarrativeBlockRepo"),
	}
}

func (r *pgNarrativeBlockRepository) ListBlocks(ctx context.Context, blockType string, playthrough int, excludeIDs []int64) ([]models.NarrativeBlock, error) {
	logFields := []zap.Field{
		zap.String("blockType", blockType),
		zap.Int("playthrough", playthrough),
		zap.Int("excluded", len(excludeIDs)),
	}

	blocks := make([]models.NarrativeBlock, 0)
	err := pgxscan.Select(ctx, r.db, &blocks, listBlocksQuery, blockType, playthrough, pq.Array(nonNil(excludeIDs)))
	if err != nil {
		r.logger.Error("Failed to list narrative blocks", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to list narrative blocks of type %q: %w", blockType, err)
	}
	return blocks, nil
}

func (r *pgNarrativeBlockRepository) GetBlock(ctx context.Context, id int64) (*models.NarrativeBlock, error) {
	var block models.NarrativeBlock
	if err := pgxscan.Get(ctx, r.db, &block, getBlockByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Narrative block not found", zap.Int64("blockID", id))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get narrative block", zap.Int64("blockID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get narrative block %d: %w", id, err)
	}
	return &block, nil
}

func (r *pgNarrativeBlockRepository) ListAllBlocks(ctx context.Context) ([]models.NarrativeBlock, error) {
	blocks := make([]models.NarrativeBlock, 0)
	if err := pgxscan.Select(ctx, r.db, &blocks, listAllBlocksQuery); err != nil {
		r.logger.Error("Failed to list all narrative blocks", zap.Error(err))
		return nil, fmt.Errorf("failed to list narrative blocks: %w", err)
	}
	return blocks, nil
}

// CreateBlock вставляет блок и заполняет ID.
func (r *pgNarrativeBlockRepository) CreateBlock(ctx context.Context, block *models.NarrativeBlock) error {
	logFields := []zap.Field{zap.String("blockType", block.BlockType), zap.Int("sequenceOrder", block.SequenceOrder)}

	err := r.db.QueryRow(ctx, createBlockQuery,
		block.BlockType,
		block.Text,
		block.ImageURL,
		block.ButtonText,
		block.SequenceOrder,
		block.IsFinalInSequence,
		block.RequiredPlaythrough,
	).Scan(&block.ID)
	if err != nil {
		r.logger.Error("Failed to create narrative block", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create narrative block: %w", err)
	}

	r.logger.Info("Narrative block created", append(logFields, zap.Int64("blockID", block.ID))...)
	return nil
}

func (r *pgNarrativeBlockRepository) DeleteBlock(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteBlockQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete narrative block", zap.Int64("blockID", id), zap.Error(err))
		return fmt.Errorf("failed to delete narrative block %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Narrative block deleted", zap.Int64("blockID", id))
	return nil
}
