package internal

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/notionmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	if input.Body != nil {
		data, _ := io.ReadAll(input.Body)
		f.body = string(data)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestS3Exporter_Export(t *testing.T) {
	up := &fakeUploader{}
	exp := newS3Exporter(up, notionmap.ExportConfig{Bucket: "views", Prefix: "/exports/"}, nil)

	loc, err := exp.Export(context.Background(), "tasks.csv", "text/csv", strings.NewReader("Task\nWrite docs\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3://views/exports/tasks.csv", loc)
	assert.Equal(t, "views", aws.ToString(up.input.Bucket))
	assert.Equal(t, "exports/tasks.csv", aws.ToString(up.input.Key))
	assert.Equal(t, "text/csv", aws.ToString(up.input.ContentType))
	assert.Equal(t, "Task\nWrite docs\n", up.body)
}

func TestS3Exporter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		remote bool
	}{
		{name: "api error", err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}, remote: true},
		{name: "network error", err: errors.New("dial tcp: timeout"), remote: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := newS3Exporter(&fakeUploader{err: tt.err}, notionmap.ExportConfig{Bucket: "views"}, nil)
			_, err := exp.Export(context.Background(), "a.csv", "", strings.NewReader(""))
			require.Error(t, err)
			assert.Equal(t, tt.remote, notionmap.IsRemoteError(err))
			assert.Equal(t, !tt.remote, notionmap.IsConnectivityError(err))
		})
	}
}

func TestS3Exporter_EmptyName(t *testing.T) {
	exp := newS3Exporter(&fakeUploader{}, notionmap.ExportConfig{Bucket: "views"}, nil)
	_, err := exp.Export(context.Background(), "/", "", strings.NewReader(""))
	assert.True(t, notionmap.IsValidationError(err))
}

func TestValidateExportConfig(t *testing.T) {
	assert.Error(t, ValidateExportConfig(notionmap.ExportConfig{}))
	assert.Error(t, ValidateExportConfig(notionmap.ExportConfig{Bucket: "b", Endpoint: "localhost:9000"}))
	assert.NoError(t, ValidateExportConfig(notionmap.ExportConfig{Bucket: "b", Endpoint: "http://localhost:9000"}))
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://views/exports/tasks.csv")
	require.NoError(t, err)
	assert.Equal(t, "views", bucket)
	assert.Equal(t, "exports/tasks.csv", key)

	for _, bad := range []string{"http://views/x", "s3://views", "s3:///key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}
