package imaging

import (
	"image"
	"math"
)

const (
	MinResolution   = 300
	darkThreshold   = 40
	brightThreshold = 220
	minContrast     = 25
	minSharpness    = 100
	analysisLimit   = 1024
)

// Issue identifiers reported in Quality.Issues
const (
	IssueLowResolution = "low_resolution"
	IssueTooDark       = "too_dark"
	IssueOverexposed   = "overexposed"
	IssueLowContrast   = "low_contrast"
	IssueBlurry        = "blurry"
)

// Quality summarises the deterministic image checks run on an upload
type Quality struct {
	Score          float64  `json:"score" bson:"score"`
	IssuesDetected bool     `json:"issues_detected" bson:"issues_detected"`
	RiskLevel      string   `json:"risk_level" bson:"risk_level"`
	Issues         []string `json:"issues" bson:"issues"`
	Width          int      `json:"width" bson:"width"`
	Height         int      `json:"height" bson:"height"`
	Brightness     float64  `json:"brightness" bson:"brightness"`
	Contrast       float64  `json:"contrast" bson:"contrast"`
	Sharpness      float64  `json:"sharpness" bson:"sharpness"`
}

// AnalyzeQuality scores img from 0 (clean) to 100 (unusable)
func AnalyzeQuality(img image.Image) Quality {
	b := img.Bounds()
	q := Quality{Width: b.Dx(), Height: b.Dy(), Issues: []string{}}

	gray := FitWithin(img, analysisLimit)
	q.Brightness = round2(meanLuminance(gray))
	q.Contrast = round2(stdDev(gray, q.Brightness))
	q.Sharpness = round2(laplacianVariance(gray))

	if q.Width < MinResolution || q.Height < MinResolution {
		q.Score += 25
		q.Issues = append(q.Issues, IssueLowResolution)
	}
	switch {
	case q.Brightness < darkThreshold:
		q.Score += 15
		q.Issues = append(q.Issues, IssueTooDark)
	case q.Brightness > brightThreshold:
		q.Score += 15
		q.Issues = append(q.Issues, IssueOverexposed)
	}
	if q.Contrast < minContrast {
		q.Score += 15
		q.Issues = append(q.Issues, IssueLowContrast)
	}
	if q.Sharpness < minSharpness {
		q.Score += 20
		q.Issues = append(q.Issues, IssueBlurry)
	}

	q.IssuesDetected = q.Score >= 40
	switch {
	case q.Score >= 60:
		q.RiskLevel = "high"
	case q.Score >= 30:
		q.RiskLevel = "medium"
	default:
		q.RiskLevel = "low"
	}
	return q
}

func stdDev(gray *image.Gray, mean float64) float64 {
	if len(gray.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, p := range gray.Pix {
		d := float64(p) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(gray.Pix)))
}

// laplacianVariance is the variance of the 4-neighbour Laplacian; low values mean a blurry image
func laplacianVariance(gray *image.Gray) float64 {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	n := float64((w - 2) * (h - 2))
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			l := grayAt(gray, x-1, y) + grayAt(gray, x+1, y) + grayAt(gray, x, y-1) + grayAt(gray, x, y+1) - 4*grayAt(gray, x, y)
			sum += l
			sumSq += l * l
		}
	}
	mean := sum / n
	return sumSq/n - mean*mean
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
