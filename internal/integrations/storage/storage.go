package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file multipart.File, publicID, folder string) (string, error)
}

// CloudinaryUploader stores files in Cloudinary.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file multipart.File, publicID, folder string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// MockUploader fabricates a URL without storing anything; used when
// Cloudinary credentials are absent.
type MockUploader struct{}

func (MockUploader) Upload(_ context.Context, _ multipart.File, publicID, folder string) (string, error) {
	url := fmt.Sprintf("https://uploads.local/%s/%s", folder, publicID)
	logrus.Infof("mock upload: %s", url)
	return url, nil
}

// FromConfig picks Cloudinary when a URL is configured, the mock otherwise.
func FromConfig(cloudinaryURL string) Uploader {
	if cloudinaryURL == "" {
		logrus.Warn("CLOUDINARY_URL not set, uploads run in mock mode")
		return MockUploader{}
	}
	up, err := NewCloudinary(cloudinaryURL)
	if err != nil {
		logrus.Warnf("cloudinary init failed, falling back to mock uploads: %v", err)
		return MockUploader{}
	}
	return up
}
