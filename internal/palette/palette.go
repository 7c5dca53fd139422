package palette

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/crypto/blake2b"

	"spectrum-chain/internal/chain"
	"spectrum-chain/internal/xdg"
)

var (
	ErrInvalidColor = errors.New("invalid hex color")
	ErrInvalidName  = errors.New("invalid palette name")
	ErrNotFound     = errors.New("palette not found")
	ErrTooFewColors = errors.New("palette needs at least 8 colors")
	ErrCorrupt      = errors.New("palette fingerprint mismatch")
)

// ---- Parsing

// Parse reads a list of hex colors separated by commas or whitespace.
// The leading '#' is optional.
func Parse(s string) ([]colorful.Color, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	colors := make([]colorful.Color, 0, len(fields))
	for _, f := range fields {
		c, err := ParseColor(f)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// ParseColor reads a single #rrggbb or #rgb color.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return colorful.Color{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Encode returns the colors as lowercase #rrggbb strings, clamped to the
// displayable range.
func Encode(colors []colorful.Color) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c.Clamped().Hex()
	}
	return out
}

// Fingerprint identifies a palette by its encoded colors: the first 8
// bytes of BLAKE2b-256 over the comma joined hex list.
func Fingerprint(colors []colorful.Color) string {
	return fingerprint(Encode(colors))
}

func fingerprint(hexColors []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(hexColors, ",")))
	return hex.EncodeToString(sum[:8])
}

// ---- Palette Files
// Format: {"name": ..., "colors": ["#rrggbb", ...], "fingerprint": ..., "saved_at": ...}

// Palette is a saved, named list of colors.
type Palette struct {
	Name        string    `json:"name"`
	Colors      []string  `json:"colors"`
	Fingerprint string    `json:"fingerprint"`
	SavedAt     time.Time `json:"saved_at"`
}

// Decode parses the stored hex colors.
func (p *Palette) Decode() ([]colorful.Color, error) {
	colors := make([]colorful.Color, len(p.Colors))
	for i, s := range p.Colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", p.Name, err)
		}
		colors[i] = c
	}
	return colors, nil
}

// Save stores colors under name in the palette directory, replacing any
// palette with the same name.
func Save(name string, colors []colorful.Color) (*Palette, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(colors) < chain.MinLength {
		return nil, ErrTooFewColors
	}

	path, err := xdg.PaletteFile(name)
	if err != nil {
		return nil, fmt.Errorf("getting palette file path: %w", err)
	}

	encoded := Encode(colors)
	p := &Palette{
		Name:        name,
		Colors:      encoded,
		Fingerprint: fingerprint(encoded),
		SavedAt:     time.Now().UTC(),
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling palette: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("writing palette file: %w", err)
	}

	return p, nil
}

// Load reads the named palette and checks its fingerprint.
func Load(name string) (*Palette, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	path, err := xdg.PaletteFile(name)
	if err != nil {
		return nil, fmt.Errorf("getting palette file path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading palette file: %w", err)
	}

	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing palette: %w", err)
	}
	if p.Fingerprint != fingerprint(p.Colors) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, name)
	}

	return &p, nil
}

// List returns the names of all saved palettes, sorted.
func List() ([]string, error) {
	dir, err := xdg.PaletteDir()
	if err != nil {
		return nil, fmt.Errorf("getting palette directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading palette directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok && validateName(name) == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

// Remove deletes the named palette. Removing a missing palette is not an error.
func Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	path, err := xdg.PaletteFile(name)
	if err != nil {
		return fmt.Errorf("getting palette file path: %w", err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing palette file: %w", err)
	}

	return nil
}

func validateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return nil
}
