package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Grayscale converts img to 8-bit luminance
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Resize scales img to the given size with Catmull-Rom resampling
func Resize(img image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Upscale multiplies both dimensions by factor
func Upscale(img image.Image, factor int) *image.Gray {
	b := img.Bounds()
	return Resize(img, b.Dx()*factor, b.Dy()*factor)
}

// FitWithin downsizes img so that neither side exceeds limit; smaller images are only converted
func FitWithin(img image.Image, limit int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return Grayscale(img)
	}
	if w >= h {
		return Resize(img, limit, max(1, h*limit/w))
	}
	return Resize(img, max(1, w*limit/h), limit)
}

// StretchContrast linearly maps the darkest pixel to 0 and the brightest to 255
func StretchContrast(gray *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, p := range gray.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	out := image.NewGray(gray.Rect)
	if hi <= lo {
		copy(out.Pix, gray.Pix)
		return out
	}
	scale := 255.0 / float64(hi-lo)
	for i, p := range gray.Pix {
		out.Pix[i] = uint8(float64(p-lo)*scale + 0.5)
	}
	return out
}

// Binarize thresholds at the mean luminance, producing black text on white
func Binarize(gray *image.Gray) *image.Gray {
	mean := meanLuminance(gray)
	out := image.NewGray(gray.Rect)
	for i, p := range gray.Pix {
		if float64(p) > mean {
			out.Pix[i] = 255
		}
	}
	return out
}

func meanLuminance(gray *image.Gray) float64 {
	if len(gray.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, p := range gray.Pix {
		sum += float64(p)
	}
	return sum / float64(len(gray.Pix))
}

func grayAt(gray *image.Gray, x, y int) float64 {
	return float64(gray.GrayAt(x, y).Y)
}
