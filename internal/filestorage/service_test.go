package filestorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestS3Service_PublicURL(t *testing.T) {
	s := &S3Service{bucket: "motormate-uploads", region: "us-east-1", logger: zap.NewNop()}
	assert.Equal(t,
		"https://motormate-uploads.s3.us-east-1.amazonaws.com/car-documents/abc.pdf",
		s.PublicURL("car-documents/abc.pdf"))
}

func TestS3Service_DeleteFile_RejectsTraversal(t *testing.T) {
	s := &S3Service{bucket: "motormate-uploads", region: "us-east-1", logger: zap.NewNop()}
	err := s.DeleteFile(context.Background(), "../secrets/key.pem")
	assert.Error(t, err)
}

func TestS3Service_DeleteFile_RejectsEmptyKey(t *testing.T) {
	s := &S3Service{bucket: "motormate-uploads", region: "us-east-1", logger: zap.NewNop()}
	err := s.DeleteFile(context.Background(), "")
	assert.Error(t, err)
}
