package palette

import (
	"os"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-chain/internal/chain"
	"spectrum-chain/internal/xdg"
)

const defaultHex = "#80ff00,#ffbf00,#ff0000,#ff00bf,#8000ff,#0040ff,#00ffff,#00ff40"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{name: "empty", in: "", want: 0},
		{name: "commas", in: "#ff0000,#00ff00,#0000ff", want: 3},
		{name: "whitespace and commas", in: " ff0000, 00ff00\n0000ff  #fff ", want: 4},
		{name: "short form", in: "#f00", want: 1},
		{name: "bad digits", in: "#ff0000,#zzzzzz", wantErr: true},
		{name: "bad length", in: "#12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("ff8000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 128.0/255.0, c.G, 1e-9)
	assert.InDelta(t, 0.0, c.B, 1e-9)

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c.R, 1e-9)
	assert.InDelta(t, 1.0, c.G, 1e-9)
	assert.InDelta(t, 0.0, c.B, 1e-9)
}

func TestEncode_DefaultPalette(t *testing.T) {
	got := Encode(chain.DefaultColors())
	assert.Equal(t, strings.Split(defaultHex, ","), got)
}

func TestEncode_Clamps(t *testing.T) {
	got := Encode([]colorful.Color{{R: 1.4, G: -0.2, B: 0.5}})
	assert.Equal(t, []string{"#ff0080"}, got)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(chain.DefaultColors())
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint(chain.DefaultColors()))

	reordered := chain.DefaultColors()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	assert.NotEqual(t, a, Fingerprint(reordered))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	colors, err := Parse(defaultHex)
	require.NoError(t, err)

	saved, err := Save("wheel", colors)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(colors), saved.Fingerprint)

	loaded, err := Load("wheel")
	require.NoError(t, err)
	assert.Equal(t, "wheel", loaded.Name)
	assert.Equal(t, saved.Colors, loaded.Colors)
	assert.Equal(t, saved.Fingerprint, loaded.Fingerprint)

	decoded, err := loaded.Decode()
	require.NoError(t, err)
	assert.Equal(t, colors, decoded)

	path, err := xdg.PaletteFile("wheel")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSave_Validation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Save("short", chain.DefaultColors()[:7])
	assert.ErrorIs(t, err, ErrTooFewColors)

	for _, name := range []string{"", ".hidden", "..", "a/b", `a\b`} {
		_, err := Save(name, chain.DefaultColors())
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load("../escape")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = Save("tampered", chain.DefaultColors())
	require.NoError(t, err)
	path, err := xdg.PaletteFile("tampered")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = []byte(strings.Replace(string(data), "#80ff00", "#80ff01", 1))
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, err = Load("tampered")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestListRemove(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	names, err := List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"ocean", "ember", "moss"} {
		_, err := Save(name, chain.DefaultColors())
		require.NoError(t, err)
	}

	names, err = List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ember", "moss", "ocean"}, names)

	require.NoError(t, Remove("moss"))
	require.NoError(t, Remove("moss"), "removing twice is fine")

	names, err = List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ember", "ocean"}, names)
}
