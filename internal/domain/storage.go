package domain

import (
	"context"
	"io"
)

type MediaKind string

const (
	MediaProductImage   MediaKind = "product_images"
	MediaCategoryImage  MediaKind = "category_images"
	MediaAboutImage     MediaKind = "about_images"
	MediaAboutVideo     MediaKind = "about_videos"
	MediaProfilePicture MediaKind = "profile_pictures"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaProductImage, MediaCategoryImage, MediaAboutImage, MediaAboutVideo, MediaProfilePicture:
		return true
	}
	return false
}

func (k MediaKind) IsVideo() bool { return k == MediaAboutVideo }

type FileStorage interface {
	// Save stores the content under kind and returns the generated file name.
	Save(ctx context.Context, kind MediaKind, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, kind MediaKind, name string) error
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}
