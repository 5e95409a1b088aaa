package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// partCodeRe matches the kickplate part-code convention
// KP<width><height><material>: two 3-4 digit millimetre dimensions
// followed by the material code, e.g. KP800300SSS = 800x300mm SSS.
// Seven digits are ambiguous; the greedy first group makes the wider
// width win, so KP8001200SSS reads as 8001x200. Matching is
// case-insensitive.
var partCodeRe = regexp.MustCompile(`^(?i)KP(\d{3,4})(\d{3,4})([A-Z].*)$`)

// IsKickplateCode reports whether a part code is a kickplate line.
// ProMaster order exports mix kickplates with hinges, closers and
// signage; only KP-prefixed codes are cut from sheet stock.
func IsKickplateCode(code string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(code)), "KP")
}

// ParsePartCode resolves a KP part code into its width, height and
// material. The dimensions encoded in the code are authoritative; the
// order file carries no separate size columns for kickplate lines.
func ParsePartCode(code string) (width, height int, material string, err error) {
	m := partCodeRe.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return 0, 0, "", fmt.Errorf("part code %q does not match KP<width><height><material>", code)
	}
	width, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("part code %q: bad width: %w", code, err)
	}
	height, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, "", fmt.Errorf("part code %q: bad height: %w", code, err)
	}
	return width, height, strings.ToUpper(m[3]), nil
}
