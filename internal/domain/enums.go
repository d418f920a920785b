package domain

import "strings"

// BlockType identifies the kind of content a Block represents.
type BlockType string

const (
	BlockTypePage             BlockType = "PAGE"
	BlockTypeLine             BlockType = "LINE"
	BlockTypeWord             BlockType = "WORD"
	BlockTypeTable            BlockType = "TABLE"
	BlockTypeCell             BlockType = "CELL"
	BlockTypeMergedCell       BlockType = "MERGED_CELL"
	BlockTypeKeyValueSet      BlockType = "KEY_VALUE_SET"
	BlockTypeSelectionElement BlockType = "SELECTION_ELEMENT"
)

// EntityType tags a KEY_VALUE_SET block as the key or the value side of a form field.
type EntityType string

const (
	EntityTypeKey   EntityType = "KEY"
	EntityTypeValue EntityType = "VALUE"
)

// RelationshipType is the kind of edge between two blocks.
type RelationshipType string

const (
	RelationshipChild RelationshipType = "CHILD"
	RelationshipValue RelationshipType = "VALUE"
)

// JobStatus represents the lifecycle of an asynchronous analysis job.
type JobStatus string

const (
	JobStatusInProgress     JobStatus = "IN_PROGRESS"
	JobStatusSucceeded      JobStatus = "SUCCEEDED"
	JobStatusFailed         JobStatus = "FAILED"
	JobStatusPartialSuccess JobStatus = "PARTIAL_SUCCESS"
)

// IsTerminal reports whether polling should stop at this status.
func (s JobStatus) IsTerminal() bool {
	return s != JobStatusInProgress
}

// HasResults reports whether result pages can be fetched for a job in this status.
func (s JobStatus) HasResults() bool {
	return s == JobStatusSucceeded || s == JobStatusPartialSuccess
}

// FeatureType is an extraction capability requested from the analysis service.
// An empty feature set means plain text detection.
type FeatureType string

const (
	FeatureTables FeatureType = "TABLES"
	FeatureForms  FeatureType = "FORMS"
)

// ValidFeatureTypes lists the feature types accepted in configuration.
var ValidFeatureTypes = map[FeatureType]bool{
	FeatureTables: true,
	FeatureForms:  true,
}

// ParseFeatureTypes converts a comma-separated list such as "TABLES,FORMS" into
// feature types. Unknown and blank entries are dropped; duplicates are collapsed.
func ParseFeatureTypes(raw string) []FeatureType {
	var out []FeatureType
	seen := make(map[FeatureType]bool)
	for _, part := range strings.Split(raw, ",") {
		ft := FeatureType(strings.ToUpper(strings.TrimSpace(part)))
		if !ValidFeatureTypes[ft] || seen[ft] {
			continue
		}
		seen[ft] = true
		out = append(out, ft)
	}
	return out
}
