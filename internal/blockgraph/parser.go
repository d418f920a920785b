// Package blockgraph assembles the flat block list returned by the analysis
// service into text lines, tables and form fields.
package blockgraph

import (
	"fmt"
	"strings"

	"docextract/internal/domain"
)

// FormTextMode selects how the text of a KEY_VALUE_SET block is resolved.
type FormTextMode string

const (
	// FormTextSelf repeats the key/value block's own text once per CHILD id.
	// Textract does not populate Text on KEY_VALUE_SET blocks, so form fields are
	// normally empty in this mode.
	FormTextSelf FormTextMode = "self"
	// FormTextChildren concatenates the text of the referenced child blocks.
	FormTextChildren FormTextMode = "children"
)

// ParseFormTextMode validates a configured mode. An empty string selects FormTextSelf.
func ParseFormTextMode(s string) (FormTextMode, error) {
	switch FormTextMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormTextSelf:
		return FormTextSelf, nil
	case FormTextChildren:
		return FormTextChildren, nil
	default:
		return "", fmt.Errorf("unknown form text mode: %q", s)
	}
}

// Parser converts block sequences into ExtractedResults. It holds no per-call
// state and is safe for concurrent use.
type Parser struct {
	formText FormTextMode
}

// NewParser creates a Parser with the given form text resolution mode.
func NewParser(mode FormTextMode) *Parser {
	if mode == "" {
		mode = FormTextSelf
	}
	return &Parser{formText: mode}
}

// Parse builds a fresh ExtractedResult from blocks. Blocks are read in input order
// and never modified.
func (p *Parser) Parse(blocks []domain.Block) *domain.ExtractedResult {
	return &domain.ExtractedResult{
		Text:       ExtractText(blocks),
		Tables:     ExtractTables(blocks),
		FormFields: p.ExtractFormFields(blocks),
	}
}

// ExtractText joins the text of LINE blocks with newlines, preserving input order.
func ExtractText(blocks []domain.Block) string {
	var lines []string
	for i := range blocks {
		if blocks[i].BlockType == domain.BlockTypeLine {
			lines = append(lines, blocks[i].Text)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractTables groups non-empty CELL texts by the TABLE block that precedes them.
// Row and column positions are not retained: each table is a flat list of cell texts.
func ExtractTables(blocks []domain.Block) [][]string {
	tables := [][]string{}
	var current []string

	for i := range blocks {
		switch blocks[i].BlockType {
		case domain.BlockTypeTable:
			if len(current) > 0 {
				tables = append(tables, current)
			}
			current = nil
		case domain.BlockTypeCell:
			if blocks[i].Text != "" {
				current = append(current, blocks[i].Text)
			}
		}
	}

	if len(current) > 0 {
		tables = append(tables, current)
	}
	return tables
}

// ExtractFormFields pairs KEY blocks with their VALUE blocks and returns the
// resolved texts keyed by key text. Later duplicate keys overwrite earlier ones.
func (p *Parser) ExtractFormFields(blocks []domain.Block) map[string]string {
	fields := make(map[string]string)

	var keys []*domain.Block
	values := make(map[string]*domain.Block)
	for i := range blocks {
		b := &blocks[i]
		if b.BlockType != domain.BlockTypeKeyValueSet {
			continue
		}
		if b.HasEntityType(domain.EntityTypeKey) {
			keys = append(keys, b)
		} else {
			values[b.ID] = b
		}
	}
	if len(keys) == 0 {
		return fields
	}

	var index map[string]*domain.Block
	if p.formText == FormTextChildren {
		index = indexBlocks(blocks)
	}

	for _, key := range keys {
		var value *domain.Block
		for _, id := range key.RelatedIDs(domain.RelationshipValue) {
			if v, ok := values[id]; ok {
				value = v
			}
		}
		if value == nil {
			continue
		}

		keyText := p.textFromBlock(key, index)
		valueText := p.textFromBlock(value, index)
		if keyText != "" && valueText != "" {
			fields[keyText] = valueText
		}
	}
	return fields
}

func (p *Parser) textFromBlock(b *domain.Block, index map[string]*domain.Block) string {
	var sb strings.Builder
	for _, id := range b.RelatedIDs(domain.RelationshipChild) {
		word := b.Text
		if p.formText == FormTextChildren {
			child, ok := index[id]
			if !ok {
				continue
			}
			word = child.Text
		}
		if word != "" {
			sb.WriteString(word)
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

func indexBlocks(blocks []domain.Block) map[string]*domain.Block {
	index := make(map[string]*domain.Block, len(blocks))
	for i := range blocks {
		index[blocks[i].ID] = &blocks[i]
	}
	return index
}
