package colors

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sort"
	"time"

	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
)

// Extractor pulls a brand palette out of a logo image. It is a best-effort
// collaborator: callers fall back to DefaultPalette on any error.
type Extractor struct {
	client *http.Client
}

var _ interfaces.ColorExtractor = (*Extractor)(nil)

// DefaultPalette is the fixed triad used when extraction fails or no logo
// was uploaded.
var DefaultPalette = dto.Palette{
	Primary:   "#1F2937",
	Secondary: "#3B82F6",
	Accent:    "#F59E0B",
}

func NewExtractor() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: 4 * time.Second},
	}
}

func (e *Extractor) ExtractPalette(ctx context.Context, logoURL string) (*dto.Palette, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", logoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("err fetching logo, %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo fetch status %v", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("err decoding logo, %v", err)
	}
	palette := dominantTriad(img)
	return &palette, nil
}

// dominantTriad buckets pixels into a coarse color cube and returns the three
// most frequent buckets, skipping near-white and near-black.
func dominantTriad(img image.Image) dto.Palette {
	bounds := img.Bounds()
	counts := make(map[[3]uint8]int)

	stepX := bounds.Dx() / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / 64
	if stepY < 1 {
		stepY = 1
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
			lum := (int(r8) + int(g8) + int(b8)) / 3
			if lum > 240 || lum < 16 {
				continue
			}
			// quantize to 32-value steps so shades collapse together
			counts[[3]uint8{r8 &^ 31, g8 &^ 31, b8 &^ 31}]++
		}
	}
	if len(counts) == 0 {
		return DefaultPalette
	}

	type bucket struct {
		color [3]uint8
		count int
	}
	buckets := make([]bucket, 0, len(counts))
	for c, n := range counts {
		buckets = append(buckets, bucket{c, n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].color[0] < buckets[j].color[0]
	})

	palette := DefaultPalette
	palette.Primary = toHex(buckets[0].color)
	if len(buckets) > 1 {
		palette.Secondary = toHex(buckets[1].color)
	}
	if len(buckets) > 2 {
		palette.Accent = toHex(buckets[2].color)
	}
	return palette
}

func toHex(c [3]uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}
