package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/marquee/internal/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func parseRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	t.Setenv("REDUCE_MOTION", "")
	t.Setenv("MARQUEE_REDUCED_MOTION", "")
	root := newRootCmd()
	require.NoError(t, root.ParseFlags(args))
	return root
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := writeFile(t, "config.toml", `
[marquee]
velocity = 80
copies = 4
map-out = [0, 3]
texts = ["from", "config"]

[motion]
reduced = true
`)
	fileCfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	root := parseRoot(t, "--copies", "9", "--reduced-motion=false")
	cfg, err := resolveConfig(root, nil, fileCfg)
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Velocity, "config overrides default")
	assert.Equal(t, 9, cfg.Copies, "flag overrides config")
	assert.Equal(t, [2]float64{0, 3}, cfg.MapOut)
	assert.Equal(t, []string{"from", "config"}, cfg.Texts)
	assert.False(t, cfg.ReducedMotion)
	assert.Nil(t, cfg.Direction)
}

func TestResolveConfigArgsAndFiles(t *testing.T) {
	texts := writeFile(t, "texts.txt", "one\ntwo\n")
	page := writeFile(t, "page.txt", "copy\n")

	root := parseRoot(t, "--texts-file", texts, "--content-file", page, "--direction=false")
	cfg, err := resolveConfig(root, nil, config.FileConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, cfg.Texts)
	assert.Equal(t, []string{"copy"}, cfg.ContentLines)
	require.NotNil(t, cfg.Direction)
	assert.False(t, *cfg.Direction)

	cfg, err = resolveConfig(root, []string{"arg"}, config.FileConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"arg"}, cfg.Texts)
}

func TestLiveReloadReadsMotionAndTexts(t *testing.T) {
	path := writeFile(t, "config.toml", "[marquee]\ntexts = [\"fresh\", \"copy\"]\n\n[motion]\nreduced = true\n")

	reload, err := liveReload(path, true)()
	require.NoError(t, err)
	assert.True(t, reload.ReducedMotion)
	assert.Equal(t, []string{"fresh", "copy"}, reload.Texts)

	reload, err = liveReload(path, false)()
	require.NoError(t, err)
	assert.True(t, reload.ReducedMotion)
	assert.Nil(t, reload.Texts)

	texts := writeFile(t, "texts.txt", "from file\n")
	path = writeFile(t, "other.toml", "[marquee]\ntexts-file = \""+texts+"\"\n")
	reload, err = liveReload(path, true)()
	require.NoError(t, err)
	assert.False(t, reload.ReducedMotion)
	assert.Equal(t, []string{"from file"}, reload.Texts)

	_, err = liveReload(writeFile(t, "bad.toml", "[marquee]\nspeed = 1\n"), true)()
	require.Error(t, err)
}

func TestResolveConfigRejectsBadPair(t *testing.T) {
	root := parseRoot(t, "--map-in", "1,2,3")
	_, err := resolveConfig(root, nil, config.FileConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--map-in")
}

func TestValidateConfig(t *testing.T) {
	root := parseRoot(t)
	cfg, err := resolveConfig(root, nil, config.FileConfig{})
	require.NoError(t, err)
	require.NoError(t, validateConfig(cfg))

	bad := cfg
	bad.Copies = 1
	assert.ErrorContains(t, validateConfig(bad), "--copies")

	bad = cfg
	bad.MapIn = [2]float64{5, 5}
	assert.ErrorContains(t, validateConfig(bad), "--map-in")

	bad = cfg
	bad.RowHeight = 0
	assert.ErrorContains(t, validateConfig(bad), "--row-height")
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := writeFile(t, "config.toml", defaultConfigTemplate())
	_, err := config.LoadConfig(path)
	require.NoError(t, err)

	uncommented := strings.NewReplacer("# velocity", "velocity", "# reduced", "reduced").Replace(defaultConfigTemplate())
	path = writeFile(t, "config2.toml", uncommented)
	fileCfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, fileCfg.Marquee.Velocity)
	assert.Equal(t, 100.0, *fileCfg.Marquee.Velocity)
}

func TestSimulateCommandPrintsTrace(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDUCE_MOTION", "")
	t.Setenv("MARQUEE_REDUCED_MOTION", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"simulate", "--config", filepath.Join(t.TempDir(), "none.toml"), "--every", "1000", "--scroll", "500"})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "t(ms)")
	assert.Contains(t, text, "running")
	assert.Contains(t, text, "frames 241")
}
