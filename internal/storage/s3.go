// Package storage writes model artifacts to object storage under a
// deterministic key scheme.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// uploader is the slice of the S3 transfer manager the bucket needs.
type uploader interface {
	UploadWithContext(
		ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader),
	) (*s3manager.UploadOutput, error)
}

// Bucket uploads artifacts into one S3 bucket.
type Bucket struct {
	name     string
	uploader uploader
}

// New returns a Bucket backed by the given AWS session.
func New(sess *session.Session, name string) *Bucket {
	return &Bucket{
		name:     name,
		uploader: s3manager.NewUploader(sess),
	}
}

// NewWithUploader returns a Bucket with an explicit transfer manager, for
// tests.
func NewWithUploader(name string, u uploader) *Bucket {
	return &Bucket{name: name, uploader: u}
}

// ArtifactKey builds the deterministic object key for a model artifact.
func ArtifactKey(modelID, artifactType, fileName string) string {
	return fmt.Sprintf("models/%s/artifacts/%s/%s", modelID, artifactType, fileName)
}

// PutArtifact uploads the artifact bytes and returns the resulting location
// URL. The caller records the location on the model row only after this
// returns successfully; a failed upload leaves the row unmodified.
func (b *Bucket) PutArtifact(
	ctx context.Context, modelID, artifactType, fileName, contentType string, content []byte,
) (string, error) {
	key := ArtifactKey(modelID, artifactType, fileName)
	out, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"model-id":      aws.String(modelID),
			"artifact-type": aws.String(artifactType),
			"uploaded-at":   aws.String(time.Now().UTC().Format(time.RFC3339)),
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "error uploading artifact %q", key)
	}

	log.WithFields(log.Fields{
		"model":    modelID,
		"artifact": artifactType,
		"bytes":    len(content),
	}).Info("uploaded model artifact")
	return out.Location, nil
}
