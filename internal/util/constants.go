package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"

	PDFExtension = ".pdf"
	UploadPrefix = "uploads"
)

// 内容生成数量限制
const (
	DefaultGenerateCount = 5
	MinGenerateCount     = 1
	MaxGenerateCount     = 20
)

// RecentActivityLimit 课程报告中最近作答记录的条数
const RecentActivityLimit = 10
