package diagram

// Palette is the fixed set of node swatches.
var Palette = []string{
	"#fde68a", // amber
	"#bfdbfe", // blue
	"#bbf7d0", // green
	"#fbcfe8", // pink
	"#ddd6fe", // violet
	"#fed7aa", // orange
}

// PaletteColor picks a swatch round-robin. Negative indexes wrap to the start.
func PaletteColor(i int) string {
	if i < 0 {
		i = 0
	}
	return Palette[i%len(Palette)]
}
