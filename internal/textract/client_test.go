package textract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/domain"
	dtextract "docextract/internal/textract"
)

// fakeAPI records the last request of each kind and replays canned responses.
type fakeAPI struct {
	detectIn        *textract.DetectDocumentTextInput
	analyzeIn       *textract.AnalyzeDocumentInput
	startTextIn     *textract.StartDocumentTextDetectionInput
	startAnalysisIn *textract.StartDocumentAnalysisInput
	getTextIn       []*textract.GetDocumentTextDetectionInput
	getAnalysisIn   []*textract.GetDocumentAnalysisInput

	blocks    []types.Block
	jobStatus types.JobStatus
	statusMsg *string
	nextToken *string
	err       error
}

func (f *fakeAPI) DetectDocumentText(_ context.Context, in *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	f.detectIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &textract.DetectDocumentTextOutput{Blocks: f.blocks}, nil
}

func (f *fakeAPI) AnalyzeDocument(_ context.Context, in *textract.AnalyzeDocumentInput, _ ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error) {
	f.analyzeIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &textract.AnalyzeDocumentOutput{Blocks: f.blocks}, nil
}

func (f *fakeAPI) StartDocumentTextDetection(_ context.Context, in *textract.StartDocumentTextDetectionInput, _ ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error) {
	f.startTextIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &textract.StartDocumentTextDetectionOutput{JobId: aws.String("text-job")}, nil
}

func (f *fakeAPI) StartDocumentAnalysis(_ context.Context, in *textract.StartDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error) {
	f.startAnalysisIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &textract.StartDocumentAnalysisOutput{JobId: aws.String("analysis-job")}, nil
}

func (f *fakeAPI) GetDocumentTextDetection(_ context.Context, in *textract.GetDocumentTextDetectionInput, _ ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error) {
	f.getTextIn = append(f.getTextIn, in)
	if f.err != nil {
		return nil, f.err
	}
	return &textract.GetDocumentTextDetectionOutput{
		JobStatus:     f.jobStatus,
		StatusMessage: f.statusMsg,
		Blocks:        f.blocks,
		NextToken:     f.nextToken,
	}, nil
}

func (f *fakeAPI) GetDocumentAnalysis(_ context.Context, in *textract.GetDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error) {
	f.getAnalysisIn = append(f.getAnalysisIn, in)
	if f.err != nil {
		return nil, f.err
	}
	return &textract.GetDocumentAnalysisOutput{
		JobStatus:     f.jobStatus,
		StatusMessage: f.statusMsg,
		Blocks:        f.blocks,
		NextToken:     f.nextToken,
	}, nil
}

func keyValueBlock() types.Block {
	return types.Block{
		Id:          aws.String("k1"),
		BlockType:   types.BlockTypeKeyValueSet,
		EntityTypes: []types.EntityType{types.EntityTypeKey},
		Confidence:  aws.Float32(98.5),
		Page:        aws.Int32(2),
		Relationships: []types.Relationship{
			{Type: types.RelationshipTypeValue, Ids: []string{"v1"}},
			{Type: types.RelationshipTypeChild, Ids: []string{"w1", "w2"}},
		},
	}
}

func TestAnalyzer_AnalyzeDocument_NoFeaturesUsesTextDetection(t *testing.T) {
	api := &fakeAPI{blocks: []types.Block{
		{Id: aws.String("l1"), BlockType: types.BlockTypeLine, Text: aws.String("Hello")},
	}}
	a := dtextract.NewAnalyzer(api, nil, 0)

	blocks, err := a.AnalyzeDocument(context.Background(), []byte("doc"), nil)

	require.NoError(t, err)
	require.NotNil(t, api.detectIn)
	assert.Nil(t, api.analyzeIn)
	assert.Equal(t, []byte("doc"), api.detectIn.Document.Bytes)
	assert.Equal(t, []domain.Block{{ID: "l1", BlockType: domain.BlockTypeLine, Text: "Hello"}}, blocks)
}

func TestAnalyzer_AnalyzeDocument_WithFeatures(t *testing.T) {
	api := &fakeAPI{blocks: []types.Block{keyValueBlock()}}
	a := dtextract.NewAnalyzer(api, nil, 0)

	blocks, err := a.AnalyzeDocument(context.Background(), []byte("doc"),
		[]domain.FeatureType{domain.FeatureTables, domain.FeatureForms})

	require.NoError(t, err)
	require.NotNil(t, api.analyzeIn)
	assert.Equal(t, []types.FeatureType{types.FeatureTypeTables, types.FeatureTypeForms}, api.analyzeIn.FeatureTypes)

	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, "k1", b.ID)
	assert.Equal(t, domain.BlockTypeKeyValueSet, b.BlockType)
	assert.True(t, b.HasEntityType(domain.EntityTypeKey))
	assert.Equal(t, 2, b.Page)
	assert.InDelta(t, 98.5, b.Confidence, 0.001)
	assert.Equal(t, []string{"v1"}, b.RelatedIDs(domain.RelationshipValue))
	assert.Equal(t, []string{"w1", "w2"}, b.RelatedIDs(domain.RelationshipChild))
}

func TestAnalyzer_StartAnalysis_SelectsAPIByFeatures(t *testing.T) {
	api := &fakeAPI{}
	a := dtextract.NewAnalyzer(api, nil, 0)
	loc := domain.DocumentLocation{Bucket: "b", Key: "k.pdf"}

	ref, err := a.StartAnalysis(context.Background(), loc, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRef{ID: "text-job", TextDetection: true}, ref)
	assert.Equal(t, "b", aws.ToString(api.startTextIn.DocumentLocation.S3Object.Bucket))
	assert.Equal(t, "k.pdf", aws.ToString(api.startTextIn.DocumentLocation.S3Object.Name))

	ref, err = a.StartAnalysis(context.Background(), loc, []domain.FeatureType{domain.FeatureForms})
	require.NoError(t, err)
	assert.Equal(t, domain.JobRef{ID: "analysis-job"}, ref)
	assert.Equal(t, []types.FeatureType{types.FeatureTypeForms}, api.startAnalysisIn.FeatureTypes)
}

func TestAnalyzer_GetJobStatus(t *testing.T) {
	api := &fakeAPI{jobStatus: types.JobStatusFailed, statusMsg: aws.String("bad format")}
	a := dtextract.NewAnalyzer(api, nil, 500)

	out, err := a.GetJobStatus(context.Background(), domain.JobRef{ID: "analysis-job"})

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, out.Status)
	assert.Equal(t, "bad format", out.StatusMessage)
	require.Len(t, api.getAnalysisIn, 1)
	assert.Equal(t, int32(1), aws.ToInt32(api.getAnalysisIn[0].MaxResults))
	assert.Nil(t, api.getAnalysisIn[0].NextToken)
}

func TestAnalyzer_GetJobPage_TextDetection(t *testing.T) {
	api := &fakeAPI{
		jobStatus: types.JobStatusSucceeded,
		blocks:    []types.Block{{Id: aws.String("w"), BlockType: types.BlockTypeWord, Text: aws.String("hi")}},
		nextToken: aws.String("t2"),
	}
	a := dtextract.NewAnalyzer(api, nil, 500)

	page, err := a.GetJobPage(context.Background(), domain.JobRef{ID: "text-job", TextDetection: true}, "t1")

	require.NoError(t, err)
	assert.Equal(t, "t2", page.NextToken)
	assert.Len(t, page.Blocks, 1)
	require.Len(t, api.getTextIn, 1)
	assert.Equal(t, "t1", aws.ToString(api.getTextIn[0].NextToken))
	assert.Equal(t, int32(500), aws.ToInt32(api.getTextIn[0].MaxResults))
	assert.Empty(t, api.getAnalysisIn)
}

func TestAnalyzer_WrapsServiceErrors(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	api := &fakeAPI{err: apiErr}
	a := dtextract.NewAnalyzer(api, nil, 0)

	_, err := a.GetJobStatus(context.Background(), domain.JobRef{ID: "j"})

	assert.ErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "ProvisionedThroughputExceededException")

	var got *smithy.GenericAPIError
	assert.True(t, errors.As(err, &got))
}

func TestAnalyzer_WrapsTransportErrors(t *testing.T) {
	api := &fakeAPI{err: errors.New("dial tcp: connection refused")}
	a := dtextract.NewAnalyzer(api, nil, 0)

	_, err := a.AnalyzeDocument(context.Background(), []byte("x"), nil)

	assert.ErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "DetectDocumentText")
}
