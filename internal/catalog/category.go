package catalog

// Category buckets an offer by vertical resolution.
type Category string

const (
	Category4K     Category = "4K"
	Category2K     Category = "2K"
	CategoryFullHD Category = "Full HD"
	CategoryHD     Category = "HD"
	CategorySD     Category = "SD"
	CategoryLow    Category = "Low"
	CategoryAudio  Category = "Audio"
)

// CategoryFor maps a pixel height to its category.
// A height of zero (or less) denotes the audio-only offer.
func CategoryFor(height int) Category {
	switch {
	case height >= 2160:
		return Category4K
	case height >= 1440:
		return Category2K
	case height >= 1080:
		return CategoryFullHD
	case height >= 720:
		return CategoryHD
	case height >= 480:
		return CategorySD
	case height > 0:
		return CategoryLow
	default:
		return CategoryAudio
	}
}
