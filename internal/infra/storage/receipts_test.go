package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, f.err
}

func TestUploadReceipt(t *testing.T) {
	client := &fakePutter{}
	store := NewReceiptStoreWithClient(client, "ep-receipts", "us-east-1", "")

	url, err := store.Upload(context.Background(), "sale-1", "image/PNG; charset=binary", strings.NewReader("png"), 3)

	require.NoError(t, err)
	key := aws.ToString(client.input.Key)
	assert.True(t, strings.HasPrefix(key, "receipts/sale-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "ep-receipts", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, "https://ep-receipts.s3.us-east-1.amazonaws.com/"+key, url)
}

func TestUploadReceiptPublicBaseURL(t *testing.T) {
	client := &fakePutter{}
	store := NewReceiptStoreWithClient(client, "b", "r", "https://cdn.example.com/")

	url, err := store.Upload(context.Background(), "sale-1", "application/pdf", strings.NewReader("%PDF"), 4)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(client.input.Key), url)
}

func TestUploadReceiptRejections(t *testing.T) {
	store := NewReceiptStoreWithClient(&fakePutter{}, "b", "r", "")
	_, err := store.Upload(context.Background(), "sale-1", "text/html", strings.NewReader("<html>"), 6)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	failing := NewReceiptStoreWithClient(&fakePutter{err: errors.New("AccessDenied")}, "b", "r", "")
	_, err = failing.Upload(context.Background(), "sale-1", "image/jpeg", strings.NewReader("jpg"), 3)
	assert.ErrorContains(t, err, "AccessDenied")
}
