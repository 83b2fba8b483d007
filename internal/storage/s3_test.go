package storage

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	lastInput *s3manager.UploadInput
	err       error
}

func (f *fakeUploader) UploadWithContext(
	_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader),
) (*s3manager.UploadOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{
		Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(input.Key),
	}, nil
}

func TestArtifactKeyScheme(t *testing.T) {
	assert.Equal(t,
		"models/m-1/artifacts/pkl/model.pkl",
		ArtifactKey("m-1", "pkl", "model.pkl"))
}

func TestPutArtifact(t *testing.T) {
	fake := &fakeUploader{}
	b := NewWithUploader("bucket", fake)

	location, err := b.PutArtifact(
		context.Background(), "m-1", "confusion_matrix", "cm.png", "image/png",
		[]byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/models/m-1/artifacts/confusion_matrix/cm.png",
		location)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, "bucket", aws.StringValue(fake.lastInput.Bucket))
	assert.Equal(t, "models/m-1/artifacts/confusion_matrix/cm.png",
		aws.StringValue(fake.lastInput.Key))
	assert.Equal(t, "image/png", aws.StringValue(fake.lastInput.ContentType))
	assert.Equal(t, "m-1", aws.StringValue(fake.lastInput.Metadata["model-id"]))
	assert.Equal(t, "confusion_matrix", aws.StringValue(fake.lastInput.Metadata["artifact-type"]))
	assert.NotEmpty(t, aws.StringValue(fake.lastInput.Metadata["uploaded-at"]))

	body, err := io.ReadAll(fake.lastInput.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), body)
}

func TestPutArtifactFailure(t *testing.T) {
	fake := &fakeUploader{err: errors.New("denied")}
	b := NewWithUploader("bucket", fake)

	_, err := b.PutArtifact(
		context.Background(), "m-1", "pkl", "model.pkl", "application/octet-stream", nil)
	assert.Error(t, err)
}
