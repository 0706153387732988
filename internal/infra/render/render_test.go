package render_test

import (
	"strings"
	"testing"

	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/infra/render"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesExactlyTheArtifactSet(t *testing.T) {
	r := render.NewRenderer()

	files, err := r.Render(dto.SiteCopy{
		Headline:      "Acme Plumbing",
		Subheadline:   "Pipes done right",
		AboutSection:  "Family business since 1990.",
		ServiceBlurbs: []string{"Repairs", "Installations"},
		CallToAction:  "Call us",
	}, dto.Palette{Primary: "#1F2937", Secondary: "#3B82F6", Accent: "#F59E0B"}, dto.ContactInfo{
		Email: "info@acme.test",
		Phone: "555-0100",
	})
	require.NoError(t, err)

	require.Len(t, files, len(consts.ArtifactFiles))
	for _, name := range consts.ArtifactFiles {
		require.Contains(t, files, name)
		require.NotEmpty(t, files[name])
	}
}

func TestRenderEscapesCopyInHTML(t *testing.T) {
	r := render.NewRenderer()

	files, err := r.Render(dto.SiteCopy{
		Headline: `Best <script>alert(1)</script> shop`,
	}, dto.Palette{Primary: "#111", Secondary: "#222", Accent: "#333"}, dto.ContactInfo{})
	require.NoError(t, err)

	index := string(files["index.html"])
	require.NotContains(t, index, "<script>alert(1)</script>")
	require.Contains(t, index, "&lt;script&gt;")
}

func TestRenderInjectsPaletteIntoStyles(t *testing.T) {
	r := render.NewRenderer()

	files, err := r.Render(dto.SiteCopy{Headline: "x"},
		dto.Palette{Primary: "#1F2937", Secondary: "#3B82F6", Accent: "#F59E0B"}, dto.ContactInfo{})
	require.NoError(t, err)

	styles := string(files["styles.css"])
	require.True(t, strings.Contains(styles, "#1F2937"))
	require.True(t, strings.Contains(styles, "#3B82F6"))
	require.True(t, strings.Contains(styles, "#F59E0B"))
}
