package thaitext

import (
	"sort"
	"strings"
	"unicode"

	"github.com/veer66/mapkha"

	"github.com/lumnam/lumnam-linebot-go/internal/sliceutil"
)

// fillerWords never make useful search keywords on their own.
var fillerWords = map[string]bool{
	"รายละเอียด": true, "ข้อมูล": true, "ขอ": true, "อยาก": true, "ไป": true,
	"เที่ยว": true, "ที่": true, "หน่อย": true, "ครับ": true, "ค่ะ": true,
	"คะ": true, "นะ": true, "ของ": true, "และ": true, "ใน": true,
}

// Segmenter splits Thai text into dictionary words. Without a dictionary it
// degrades to treating the whole text as one keyword.
type Segmenter struct {
	wordcut *mapkha.Wordcut
}

// NewSegmenter loads the dictionary at path, or mapkha's bundled dictionary
// when path is empty. On error the returned Segmenter is still usable.
func NewSegmenter(path string) (*Segmenter, error) {
	var (
		dict *mapkha.Dict
		err  error
	)
	if path == "" {
		dict, err = mapkha.LoadDefaultDict()
	} else {
		dict, err = mapkha.LoadDict(path)
	}
	if err != nil {
		return &Segmenter{}, err
	}
	return &Segmenter{wordcut: mapkha.NewWordcut(dict)}, nil
}

// Enabled reports whether a dictionary is loaded.
func (s *Segmenter) Enabled() bool {
	return s != nil && s.wordcut != nil
}

// Keywords returns distinct words of at least two runes, longest first,
// skipping filler words. The input itself is never included.
func (s *Segmenter) Keywords(text string) []string {
	text = strings.TrimSpace(text)
	if !s.Enabled() || text == "" {
		return nil
	}

	var out []string
	for _, seg := range s.wordcut.Segment(text) {
		seg = strings.TrimSpace(seg)
		if RuneLen(seg) < 2 || fillerWords[seg] || seg == text {
			continue
		}
		if !hasLetter(seg) {
			continue
		}
		out = append(out, seg)
	}
	out = sliceutil.Deduplicate(out, func(w string) string { return w })
	sort.SliceStable(out, func(i, j int) bool {
		return RuneLen(out[i]) > RuneLen(out[j])
	})
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
