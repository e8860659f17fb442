package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels 解码前允许的最大像素数
const DefaultMaxPixels = 40_000_000

// ErrImageTooLarge 声明的尺寸超过像素上限，未解码
var ErrImageTooLarge = errors.New("图片像素超过上限")

// Processor 证据图片预处理：等比缩放后统一转 JPEG
type Processor struct {
	maxDimension int
	quality      int
	maxPixels    int64
}

// NewProcessor maxDimension<=0 表示不缩放；maxPixels<=0 使用 DefaultMaxPixels
func NewProcessor(maxDimension, quality int, maxPixels int64) *Processor {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Processor{maxDimension: maxDimension, quality: quality, maxPixels: maxPixels}
}

// Process 返回处理后的数据与 Content-Type
// 无法解码或超过像素上限时返回 error，调用方可回退为原图
func (p *Processor) Process(data []byte) ([]byte, string, error) {
	// 解码所需内存与宽×高成正比，先只读文件头
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("读取图片尺寸失败: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("图片解码失败: %w", err)
	}

	dst := downscale(src, p.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, "", fmt.Errorf("JPEG 编码失败: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// downscale 长边超过 limit 时按比例缩小
func downscale(src image.Image, limit int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return src
	}

	scale := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
