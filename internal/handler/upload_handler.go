package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	// 注册 png/webp 解码器，jpeg 随 image/jpeg 一起注册
	_ "image/png"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxUploadBytes = 5 << 20 // 5MB
	thumbMaxDim    = 512
	thumbQuality   = 85
)

var (
	allowedPhotoTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	}
	allowedPhotoExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
)

// UploadPhoto 处理餐食照片上传，校验真实文件类型后落盘并返回可访问 URL
func (a *API) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的照片", "success": 0})
		return
	}

	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "照片大小不能超过 5MB", "success": 0})
		return
	}

	// 按文件头部的魔数判断类型，Content-Type 请求头可被伪造
	detected, err := detectUploadType(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败", "success": 0})
		return
	}
	if !allowedPhotoTypes[detected] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传 JPEG/PNG/WebP 图片", "success": 0})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的图片扩展名", "success": 0})
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败", "success": 0})
		return
	}

	width, height := photoDimensions(file)

	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
		return
	}

	fileURL := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename)

	// 大图生成缩略图，缩略失败不影响原图上传
	thumbURL := fileURL
	if thumbName, err := a.makeThumbnail(file, strings.TrimSuffix(newFilename, ext)); err == nil && thumbName != "" {
		thumbURL = fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), thumbName)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "上传成功",
		"data": gin.H{
			"filePath":      fileURL,
			"url":           fileURL,
			"thumbnail_url": thumbURL,
			"width":         width,
			"height":        height,
		},
	})
}

func detectUploadType(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

// photoDimensions 读取图片宽高，失败时返回 0，不阻断上传
func photoDimensions(header *multipart.FileHeader) (int, int) {
	src, err := header.Open()
	if err != nil {
		return 0, 0
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// thumbnailBounds 等比缩放到长边不超过 thumbMaxDim，返回目标宽高
func thumbnailBounds(width, height int) (int, int) {
	if width <= thumbMaxDim && height <= thumbMaxDim {
		return width, height
	}
	if width >= height {
		h := height * thumbMaxDim / width
		if h < 1 {
			h = 1
		}
		return thumbMaxDim, h
	}
	w := width * thumbMaxDim / height
	if w < 1 {
		w = 1
	}
	return w, thumbMaxDim
}

// makeThumbnail 为超过 thumbMaxDim 的图片生成 jpeg 缩略图，
// 返回缩略图文件名；原图已足够小时返回空串
func (a *API) makeThumbnail(header *multipart.FileHeader, baseName string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	targetW, targetH := thumbnailBounds(bounds.Dx(), bounds.Dy())
	if targetW == bounds.Dx() && targetH == bounds.Dy() {
		return "", nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	thumbName := baseName + "_thumb.jpg"
	out, err := os.Create(filepath.Join(a.uploadDir, thumbName))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return "", err
	}
	return thumbName, nil
}
