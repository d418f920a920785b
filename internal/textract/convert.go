package textract

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"docextract/internal/domain"
)

func toDomainBlocks(in []types.Block) []domain.Block {
	out := make([]domain.Block, 0, len(in))
	for i := range in {
		out = append(out, toDomainBlock(&in[i]))
	}
	return out
}

func toDomainBlock(b *types.Block) domain.Block {
	block := domain.Block{
		ID:          aws.ToString(b.Id),
		BlockType:   domain.BlockType(b.BlockType),
		Text:        aws.ToString(b.Text),
		Page:        int(aws.ToInt32(b.Page)),
		Confidence:  float64(aws.ToFloat32(b.Confidence)),
		RowIndex:    int(aws.ToInt32(b.RowIndex)),
		ColumnIndex: int(aws.ToInt32(b.ColumnIndex)),
	}
	if len(b.EntityTypes) > 0 {
		block.EntityTypes = make([]domain.EntityType, len(b.EntityTypes))
		for i, et := range b.EntityTypes {
			block.EntityTypes[i] = domain.EntityType(et)
		}
	}
	if len(b.Relationships) > 0 {
		block.Relationships = make([]domain.Relationship, len(b.Relationships))
		for i, rel := range b.Relationships {
			block.Relationships[i] = domain.Relationship{
				Type: domain.RelationshipType(rel.Type),
				IDs:  rel.Ids,
			}
		}
	}
	return block
}

func toFeatureTypes(in []domain.FeatureType) []types.FeatureType {
	out := make([]types.FeatureType, len(in))
	for i, ft := range in {
		out[i] = types.FeatureType(ft)
	}
	return out
}

func toS3Location(loc domain.DocumentLocation) *types.DocumentLocation {
	return &types.DocumentLocation{
		S3Object: &types.S3Object{
			Bucket: aws.String(loc.Bucket),
			Name:   aws.String(loc.Key),
		},
	}
}
