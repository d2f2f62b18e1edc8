package chart

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/pipeline"
	"github.com/ampes-dev/ampes/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func tower(t *testing.T) *pipeline.Output {
	t.Helper()
	cfg, err := config.Parse([]byte(testutil.GroupedYAML), config.FormatYAML)
	require.NoError(t, err)
	p, err := pipeline.New(cfg)
	require.NoError(t, err)
	out, err := p.Run(context.Background(), strings.NewReader(testutil.SquareTower(4, 10, 0.25)))
	require.NoError(t, err)
	return out
}

func TestStride(t *testing.T) {
	assert.Equal(t, 1, stride(10, 100))
	assert.Equal(t, 1, stride(100, 100))
	assert.Equal(t, 2, stride(101, 100))
	assert.Equal(t, 3, stride(250, 100))
	assert.Equal(t, 1, stride(250, 0))
}

func TestLayerColors(t *testing.T) {
	assert.Nil(t, layerColors(0))
	cs := layerColors(4)
	require.Len(t, cs, 4)
	for i := 1; i < len(cs); i++ {
		assert.NotEqual(t, cs[0], cs[i])
	}
}

func TestRenderPNG(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	fs.MkdirAll("out", 0755)

	written, err := RenderPNG(fs, tower(t), "out/tower")
	require.NoError(t, err)
	assert.Equal(t, []string{"out/tower_path.png", "out/tower_power.png"}, written)
	for _, name := range written {
		data, err := fs.ReadFile(name)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "%s is not a PNG", name)
	}
}

func TestRenderPNG_Empty(t *testing.T) {
	_, err := RenderPNG(fsutil.NewMemoryFileSystem(), &pipeline.Output{}, "x")
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, tower(t), "tower run"))

	html := buf.String()
	assert.Contains(t, html, "tower run")
	assert.Contains(t, html, "Layer timing")
	assert.Contains(t, html, "power")
}
