package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 honors If-Match / If-None-Match the way the service does.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	etags   map[string]string
	down    bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, etags: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	raw, ok := f.objects[k]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(raw)), ETag: aws.String(f.etags[k])}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	current, exists := f.etags[k]
	precondition := &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	if aws.ToString(in.IfNoneMatch) == "*" && exists {
		return nil, precondition
	}
	if in.IfMatch != nil && (!exists || aws.ToString(in.IfMatch) != current) {
		return nil, precondition
	}
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	etag := fmt.Sprintf("%q", contentRevision(raw)[:32])
	f.objects[k] = raw
	f.etags[k] = etag
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func TestS3Repository_Contract(t *testing.T) {
	runRepositoryContract(t, NewS3Repository(newFakeS3(), "portal", "live.json"))
}

func TestS3Repository_OutageIsUnavailable(t *testing.T) {
	fake := newFakeS3()
	fake.down = true
	repo := NewS3Repository(fake, "portal", "live.json")

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = repo.Save(context.Background(), sampleDocument(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrConflict)
}
