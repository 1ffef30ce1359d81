package imgx

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestToJPEG_FromPNG(t *testing.T) {
	const (
		w = 64
		h = 32
	)
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode png 失败：%v", err)
	}

	out, err := ToJPEG(buf.Bytes())
	if err != nil {
		t.Fatalf("ToJPEG 失败：%v", err)
	}
	if !IsJPEG(out) {
		t.Fatalf("输出不是 JPEG")
	}

	got, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode jpeg 失败：%v", err)
	}
	gb := got.Bounds()
	if gb.Dx() != w || gb.Dy() != h {
		t.Fatalf("尺寸不符合预期：got=%dx%d want=%dx%d", gb.Dx(), gb.Dy(), w, h)
	}

	// JPEG 有损，允许一定偏差。
	c := color.RGBAModel.Convert(got.At(w/2, h/2)).(color.RGBA)
	if c.R < 200 || c.G < 200 || c.B < 200 {
		t.Fatalf("颜色不符合预期：%v（期望接近白色）", c)
	}
}

func TestToJPEG_PassThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode jpeg 失败：%v", err)
	}
	out, err := ToJPEG(buf.Bytes())
	if err != nil {
		t.Fatalf("ToJPEG 失败：%v", err)
	}
	if !bytes.Equal(out, buf.Bytes()) {
		t.Fatalf("JPEG 输入应原样返回")
	}
}

func TestToJPEG_Invalid(t *testing.T) {
	if _, err := ToJPEG(nil); err == nil {
		t.Fatalf("期望空输入返回错误")
	}
	if _, err := ToJPEG([]byte("not an image")); err == nil {
		t.Fatalf("期望无法解码的输入返回错误")
	}
}
