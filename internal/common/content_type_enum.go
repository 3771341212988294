package common

import "strings"

// MediaFileType is the kind of media a gallery item holds
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid checks if the media file type is valid
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

func DetectFileType(mimeType string) MediaFileType {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "image/") {
		return MediaFileTypeImage
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}
	return MediaFileTypeImage // Default fallback
}

// IsAcceptedUpload reports whether an uploaded file may become a gallery item.
// Any image is accepted, videos only as mp4.
func IsAcceptedUpload(mimeType string) bool {
	lowerMimeType := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(lowerMimeType, "image/") || lowerMimeType == "video/mp4"
}

// Visibility controls who can see a gallery
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) String() string {
	return string(v)
}

func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// ParseVisibility defaults an empty value to public.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return VisibilityPublic, nil
	}
	if !v.IsValid() {
		return "", ErrInvalidVisibility
	}
	return v, nil
}

// SortBy is the ordering applied to content listings
type SortBy string

const (
	SortRecent  SortBy = "recent"
	SortPopular SortBy = "popular"
	SortViews   SortBy = "views"
)

// ParseSortBy falls back to recent for anything it does not know.
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortPopular:
		return SortPopular
	case SortViews:
		return SortViews
	default:
		return SortRecent
	}
}
