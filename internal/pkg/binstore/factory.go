package binstore

import (
	"fmt"
)

// Provider names accepted by NewStore.
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// Config selects and configures a binary store provider.
type Config struct {
	Provider   string
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// NewStore creates a binary store for the configured provider.
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case ProviderCloudinary:
		return NewCloudinaryStore(config.Cloudinary)
	case ProviderS3:
		return NewS3Store(config.S3)
	default:
		return nil, fmt.Errorf("unsupported binary store provider: %q", config.Provider)
	}
}
