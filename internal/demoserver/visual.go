package demoserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/visual"
	"github.com/meetvaani/vaani/pkg/utils"
)

var (
	colorBackground = color.RGBA{R: 0xf7, G: 0xf9, B: 0xfc, A: 0xff}
	colorHeader     = color.RGBA{R: 0x1a, G: 0x3c, B: 0x6e, A: 0xff}
	colorAccent     = color.RGBA{R: 0x2e, G: 0x86, B: 0xde, A: 0xff}
	colorHighlight  = color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}
	colorMuted      = color.RGBA{R: 0xd5, G: 0xdd, B: 0xe8, A: 0xff}
	colorPaper      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// planBars drive the comparison chart: price in rupees per plan,
// matching the canned plan reply.
var planBars = []struct {
	price int
	tint  color.RGBA
}{
	{199, colorAccent},
	{299, colorHighlight},
	{499, colorHeader},
}

func (s *Server) handleGenerateVisual(w http.ResponseWriter, r *http.Request) {
	var req backend.VisualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var img image.Image
	switch req.VisualType {
	case visual.TemplatePlanComparison:
		img = renderPlanComparison()
	case visual.TemplateAccountSummary:
		img = renderAccountSummary()
	case visual.TemplateReceipt:
		img = renderReceipt()
	default:
		utils.RespondError(w, http.StatusBadRequest, "unknown visual type "+req.VisualType)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.log.Error().Err(err).Str("type", req.VisualType).Msg("png encoding failed")
		utils.RespondError(w, http.StatusInternalServerError, "visual rendering failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, backend.VisualResponse{
		Image: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Type:  req.VisualType,
	})
}

func newCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(img, 0, 0, width, height, colorBackground)
	return img
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// renderPlanComparison draws one bar per plan, scaled to the most
// expensive one.
func renderPlanComparison() image.Image {
	const width, height = 320, 200
	img := newCanvas(width, height)

	fillRect(img, 0, 0, width, 28, colorHeader)

	const chartTop, chartBottom = 44, 180
	maxPrice := planBars[len(planBars)-1].price

	barWidth := 56
	gap := (width - len(planBars)*barWidth) / (len(planBars) + 1)
	for i, bar := range planBars {
		barHeight := (chartBottom - chartTop) * bar.price / maxPrice
		x0 := gap + i*(barWidth+gap)
		fillRect(img, x0, chartBottom-barHeight, x0+barWidth, chartBottom, bar.tint)
	}

	// Baseline under the bars.
	fillRect(img, 16, chartBottom, width-16, chartBottom+2, colorHeader)

	return img
}

// renderAccountSummary draws a card with a header band and content rows.
func renderAccountSummary() image.Image {
	const width, height = 320, 160
	img := newCanvas(width, height)

	fillRect(img, 8, 8, width-8, height-8, colorPaper)
	fillRect(img, 8, 8, width-8, 40, colorHeader)

	rowTops := []int{56, 84, 112}
	for i, top := range rowTops {
		fillRect(img, 24, top, 120, top+10, colorMuted)
		tint := colorAccent
		if i == 0 {
			tint = colorHighlight
		}
		fillRect(img, 140, top, width-24, top+10, tint)
	}

	return img
}

// renderReceipt draws a narrow paper strip with item rows and a total
// band.
func renderReceipt() image.Image {
	const width, height = 240, 280
	img := newCanvas(width, height)

	fillRect(img, 24, 12, width-24, height-12, colorPaper)
	fillRect(img, 24, 12, width-24, 44, colorAccent)

	for _, top := range []int{64, 92, 120, 148, 176} {
		fillRect(img, 40, top, width-40, top+8, colorMuted)
	}

	// Tear line and total band.
	for x := 40; x < width-40; x += 8 {
		fillRect(img, x, 204, x+4, 206, colorHeader)
	}
	fillRect(img, 40, 220, width-40, 244, colorHighlight)

	return img
}
