package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage = "image/"

	// MaxAvatarSize 头像上限 2MB
	MaxAvatarSize = 2 << 20
)

var (
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// 默认分页
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)
