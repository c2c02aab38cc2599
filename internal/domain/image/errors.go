package image

import "errors"

var (
	ErrOfficeNotFound   = errors.New("office not found")
	ErrNotOfficeOwner   = errors.New("you can only manage images on your own offices")
	ErrImageNotFound    = errors.New("image not found")
	ErrOnlyImage        = errors.New("cannot delete the only image")
	ErrFeaturedImage    = errors.New("cannot delete the featured image")
	ErrInvalidImageType = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
)
