package models

// BlockTypeIntro - последовательность вступительных блоков, показываемая в начале прохождения.
const BlockTypeIntro = "intro"

// NarrativeBlock - одноразовый блок повествования внутри именованной последовательности.
type NarrativeBlock struct {
	ID                  int64   `json:"id" db:"id"`
	BlockType           string  `json:"block_type" db:"block_type"`
	Text                string  `json:"text" db:"text"`
	ImageURL            *string `json:"image_url,omitempty" db:"image_url"`
	ButtonText          string  `json:"button_text" db:"button_text"`
	SequenceOrder       int     `json:"sequence_order" db:"sequence_order"`
	IsFinalInSequence   bool    `json:"is_final_in_sequence" db:"is_final_in_sequence"`
	RequiredPlaythrough *int    `json:"required_playthrough,omitempty" db:"required_playthrough"` // nil или 0 - любое прохождение
}

// AvailableIn сообщает, доступен ли блок в указанном прохождении.
func (b NarrativeBlock) AvailableIn(playthrough int) bool {
	return b.RequiredPlaythrough == nil || *b.RequiredPlaythrough == 0 || *b.RequiredPlaythrough == playthrough
}
