package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("upload file too large")
	ErrExtensionNotAllowed = errors.New("upload extension not allowed")
	ErrTypeNotAllowed      = errors.New("upload content type not allowed")
)

// File 通过校验的上传文件，调用方负责 Close
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      multipart.File
}

// Close 关闭底层文件
func (f *File) Close() error {
	if f == nil || f.Reader == nil {
		return nil
	}
	return f.Reader.Close()
}

// Validator 处方文件校验（仅校验，不落盘，文件直接转发给后端上传接口）
type Validator struct {
	maxSize    int64
	types      []string
	extensions []string
}

// NewValidator 根据上传配置创建校验器
func NewValidator(cfg config.UploadConfig) *Validator {
	return &Validator{
		maxSize:    cfg.MaxSize,
		types:      cfg.AllowedTypes,
		extensions: cfg.AllowedExtensions,
	}
}

// Open 校验大小、扩展名与真实类型后打开文件
func (v *Validator) Open(header *multipart.FileHeader) (*File, error) {
	if header == nil {
		return nil, nil
	}
	if v.maxSize > 0 && header.Size > v.maxSize {
		return nil, fmt.Errorf("%w: max %d MB", ErrFileTooLarge, v.maxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(v.extensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, v.extensions) {
			return nil, fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
		}
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	// 以文件内容识别类型，不信任客户端声明的 Content-Type
	detected, err := mimetype.DetectReader(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, err
	}
	contentType := detected.String()
	if len(v.types) > 0 && !isAllowedType(detected, v.types) {
		src.Close()
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)
	}

	return &File{
		Filename:    filepath.Base(header.Filename),
		ContentType: baseType(contentType),
		Size:        header.Size,
		Reader:      src,
	}, nil
}

func isAllowedType(detected *mimetype.MIME, allowed []string) bool {
	for _, t := range allowed {
		normalized := strings.TrimSpace(t)
		if normalized == "" {
			continue
		}
		if detected.Is(normalized) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

// baseType 去掉 charset 等参数
func baseType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return contentType
}
