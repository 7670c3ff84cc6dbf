// Package artifact stores the source images of enrolled identities.
package artifact

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameTimeLayout is the timestamp embedded in artifact names.
const nameTimeLayout = "20060102150405"

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Slug reduces an identity code to a filename-safe ASCII token.
// Runs of anything other than letters, digits, '-' and '_' collapse to one '-'.
func Slug(code string) string {
	code = RemoveDiacritics(strings.TrimSpace(code))

	var sb strings.Builder
	dash := false
	for _, r := range code {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimRight(sb.String(), "-")
	if slug == "" {
		return "identity"
	}
	return slug
}

// extensions maps detected image MIME types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// Extension returns the file extension for mimeType, ".jpg" when unknown.
func Extension(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	return ".jpg"
}

// Name derives a fresh artifact name from an identity code, the image MIME
// type and a timestamp. The random suffix keeps repeated enrollments of one
// code within the same second from colliding.
func Name(code, mimeType string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return Slug(code) + "_" + now.UTC().Format(nameTimeLayout) + "_" + suffix + Extension(mimeType)
}
