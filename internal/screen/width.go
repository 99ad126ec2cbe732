package screen

import "sort"

// combiningRanges packs each combining-mark block as first<<8 |
// (last-first): a block is at most 256 code points wide, so the span
// fits a single byte and the whole table stays small enough to
// binary-search on every Put call without measurable cost.
var combiningRanges = sortedCombining([]uint32{
	pack(0x0300, 0x036F), // Combining Diacritical Marks
	pack(0x0483, 0x0489), // Cyrillic combining
	pack(0x0591, 0x05BD), // Hebrew points
	pack(0x05BF, 0x05BF),
	pack(0x05C1, 0x05C2),
	pack(0x05C4, 0x05C5),
	pack(0x05C7, 0x05C7),
	pack(0x0610, 0x061A), // Arabic marks
	pack(0x064B, 0x065F),
	pack(0x0670, 0x0670),
	pack(0x06D6, 0x06DC),
	pack(0x06DF, 0x06E4),
	pack(0x06E7, 0x06E8),
	pack(0x06EA, 0x06ED),
	pack(0x0711, 0x0711),
	pack(0x0730, 0x074A), // Syriac marks
	pack(0x07A6, 0x07B0), // Thaana marks
	pack(0x07EB, 0x07F3),
	pack(0x0816, 0x0819), // Samaritan marks
	pack(0x081B, 0x0823),
	pack(0x0825, 0x0827),
	pack(0x0829, 0x082D),
	pack(0x0859, 0x085B),
	pack(0x08E3, 0x0902), // Devanagari and related
	pack(0x093A, 0x093A),
	pack(0x093C, 0x093C),
	pack(0x0941, 0x0948),
	pack(0x094D, 0x094D),
	pack(0x0951, 0x0957),
	pack(0x0962, 0x0963),
	pack(0x1AB0, 0x1AFF), // Combining Diacritical Marks Extended
	pack(0x1DC0, 0x1DFF), // Combining Diacritical Marks Supplement
	pack(0x20D0, 0x20FF), // Combining Diacritical Marks for Symbols
	pack(0xFE00, 0xFE0F), // Variation Selectors
	pack(0xFE20, 0xFE2F), // Combining Half Marks
})

func pack(first, last rune) uint32 {
	return uint32(first)<<8 | uint32(last-first)
}

func unpack(v uint32) (first, last rune) {
	first = rune(v >> 8)
	return first, first + rune(v&0xFF)
}

func sortedCombining(ranges []uint32) []uint32 {
	sort.Slice(ranges, func(i, j int) bool {
		fi, _ := unpack(ranges[i])
		fj, _ := unpack(ranges[j])
		return fi < fj
	})
	return ranges
}

func isCombining(r rune) bool {
	i := sort.Search(len(combiningRanges), func(i int) bool {
		first, _ := unpack(combiningRanges[i])
		return first > r
	})
	if i == 0 {
		return false
	}
	first, last := unpack(combiningRanges[i-1])
	return r >= first && r <= last
}

type wideGate int

const (
	gateAlways wideGate = iota
	gateEmoji
	gateCJKExtended
)

type wideRange struct {
	lo, hi rune
	gate   wideGate
}

// wideRanges covers Hangul Jamo, CJK Unified and Compatibility
// Ideographs, Hangul Syllables, and Fullwidth forms, which always render
// double-width; Emoticons and the Supplementary Ideographic Plane are
// gated behind the terminal's probed capability.
var wideRanges = []wideRange{
	{0x1100, 0x11FF, gateAlways},    // Hangul Jamo
	{0x2E80, 0x303E, gateAlways},    // CJK Radicals, Kangxi, punctuation
	{0x3041, 0x33FF, gateAlways},    // Hiragana..CJK Compat
	{0x3400, 0x4DBF, gateAlways},    // CJK Extension A
	{0x4E00, 0x9FFF, gateAlways},    // CJK Unified Ideographs
	{0xA000, 0xA4CF, gateAlways},    // Yi
	{0xAC00, 0xD7A3, gateAlways},    // Hangul Syllables
	{0xF900, 0xFAFF, gateAlways},    // CJK Compatibility Ideographs
	{0xFF00, 0xFFEF, gateAlways},    // Fullwidth forms
	{0x1F300, 0x1F64F, gateEmoji},   // Emoticons/pictographs
	{0x1F900, 0x1F9FF, gateEmoji},   // Supplemental Symbols and Pictographs
	{0x20000, 0x2FFFD, gateCJKExtended}, // SIP: CJK Extension B and beyond
}

// RuneWidth reports r's display column width under caps: 0 for
// combining marks and NUL, 2 for C0/DEL (rendered as a caret escape like
// ^X), 2 for a wide range whose gate is satisfied, 1 otherwise.
func RuneWidth(r rune, caps Capabilities) int {
	if r == 0 {
		return 0
	}
	if r < 0x20 || r == 0x7F {
		return 2
	}
	if isCombining(r) {
		return 0
	}
	for _, wr := range wideRanges {
		if r < wr.lo || r > wr.hi {
			continue
		}
		switch wr.gate {
		case gateAlways:
			return 2
		case gateEmoji:
			if caps.DoubleWidthEmoji {
				return 2
			}
			return 1
		case gateCJKExtended:
			if caps.DoubleWidthCJK {
				return 2
			}
			return 1
		}
	}
	return 1
}
