package imaging

import (
	"encoding/hex"
	"errors"
	"image"
	"math/bits"
)

// HashSize is the side of the grid the average hash is computed on
const HashSize = 64

var ErrHashLength = errors.New("hashes have different lengths")

// AverageHash shrinks img to a HashSize x HashSize grayscale grid and sets one
// bit per cell brighter than the grid mean. The result is hex encoded.
func AverageHash(img image.Image) string {
	small := Resize(img, HashSize, HashSize)
	mean := meanLuminance(small)

	buf := make([]byte, HashSize*HashSize/8)
	for i, p := range small.Pix {
		if float64(p) > mean {
			buf[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return hex.EncodeToString(buf)
}

// HammingDistance counts the differing bits of two hex encoded hashes
func HammingDistance(a, b string) (int, error) {
	ab, err := hex.DecodeString(a)
	if err != nil {
		return 0, err
	}
	bb, err := hex.DecodeString(b)
	if err != nil {
		return 0, err
	}
	if len(ab) != len(bb) {
		return 0, ErrHashLength
	}
	dist := 0
	for i := range ab {
		dist += bits.OnesCount8(ab[i] ^ bb[i])
	}
	return dist, nil
}
