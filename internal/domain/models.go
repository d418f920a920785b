package domain

import "time"

// Relationship is a typed edge from a block to other blocks in the same response.
type Relationship struct {
	Type RelationshipType `json:"type"`
	IDs  []string         `json:"ids"`
}

// Block is a unit of recognized content returned by the analysis service.
// Blocks are never modified after they are received.
type Block struct {
	ID            string         `json:"id"`
	BlockType     BlockType      `json:"block_type"`
	Text          string         `json:"text,omitempty"`
	EntityTypes   []EntityType   `json:"entity_types,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	Page          int            `json:"page,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	RowIndex      int            `json:"row_index,omitempty"`
	ColumnIndex   int            `json:"column_index,omitempty"`
}

// HasEntityType reports whether the block is tagged with the given entity type.
func (b *Block) HasEntityType(et EntityType) bool {
	for _, t := range b.EntityTypes {
		if t == et {
			return true
		}
	}
	return false
}

// RelatedIDs returns the target ids of every relationship of the given type, in order.
func (b *Block) RelatedIDs(rt RelationshipType) []string {
	var ids []string
	for _, rel := range b.Relationships {
		if rel.Type == rt {
			ids = append(ids, rel.IDs...)
		}
	}
	return ids
}

// BlockPage is one page of job results. An empty NextToken means no more pages.
type BlockPage struct {
	Blocks    []Block
	NextToken string
}

// DocumentLocation addresses a stored document.
type DocumentLocation struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// JobRef identifies an asynchronous job. TextDetection is set for jobs started
// without feature types, whose results come from the text detection API.
type JobRef struct {
	ID            string
	TextDetection bool
}

// Job tracks an in-flight asynchronous analysis request.
type Job struct {
	Ref           JobRef
	Location      DocumentLocation
	Status        JobStatus
	StatusMessage string
	Pages         []BlockPage
	Polls         int
	StartedAt     time.Time
}

// Blocks returns the blocks of all fetched pages in fetch order.
func (j *Job) Blocks() []Block {
	n := 0
	for i := range j.Pages {
		n += len(j.Pages[i].Blocks)
	}
	blocks := make([]Block, 0, n)
	for i := range j.Pages {
		blocks = append(blocks, j.Pages[i].Blocks...)
	}
	return blocks
}

// ExtractedResult is the structured output assembled from a block sequence.
type ExtractedResult struct {
	Text       string            `json:"text"`
	Tables     [][]string        `json:"tables"`
	FormFields map[string]string `json:"form_fields"`
}

// AsyncExtraction is the outcome of the storage-backed extraction paths.
type AsyncExtraction struct {
	JobID  string           `json:"job_id"`
	Pages  int              `json:"pages"`
	Blocks []Block          `json:"blocks,omitempty"`
	Result *ExtractedResult `json:"result"`
}
