// Package imgx 做最小的图片格式转换（extrathumbs 只接受 JPEG）。
package imgx

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png" // 注册 PNG 解码器（backdrop 不一定总是 jpeg）
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// IsJPEG 按文件头判断是否为 JPEG。
func IsJPEG(b []byte) bool {
	return bytes.HasPrefix(b, jpegMagic)
}

// ToJPEG 把图片转为 JPEG。
//
// 约束：
// - 输入已是 JPEG 时原样返回（不重新编码，避免画质损失）
// - 其它输入允许是 PNG（依赖标准库解码器）
// - 输出固定为 JPEG
func ToJPEG(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("图片为空")
	}
	if IsJPEG(src) {
		return src, nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("图片尺寸无效")
	}

	// 透明通道统一铺在不透明画布上，JPEG 不支持 alpha。
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
