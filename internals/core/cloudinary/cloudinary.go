package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/mercadolocal/marketplace-service/internals/app/config"
)

var ErrNotConfigured = errors.New("cloudinary not initialized")

type Uploaded struct {
	URL      string
	PublicID string
}

type Client struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

func NewClient(cfg config.Config) (*Client, error) {
	if cfg.CLOUD_NAME == "" || cfg.CLOUD_API_KEY == "" || cfg.CLOUD_SECRET == "" {
		return &Client{rootFolder: cfg.CLOUD_FOLDER}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CLOUD_NAME, cfg.CLOUD_API_KEY, cfg.CLOUD_SECRET)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Client{cld: cld, rootFolder: cfg.CLOUD_FOLDER}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.cld != nil
}

// UploadImage streams file into <root>/<folder>.
func (c *Client) UploadImage(ctx context.Context, file io.Reader, folder string) (Uploaded, error) {
	if !c.Enabled() {
		return Uploaded{}, ErrNotConfigured
	}

	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       path.Join(c.rootFolder, folder),
		ResourceType: "image",
	})
	if err != nil {
		return Uploaded{}, fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return Uploaded{}, fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	return Uploaded{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (c *Client) DeleteImage(ctx context.Context, publicID string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if publicID == "" {
		return nil
	}

	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}
