package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandString returns a short lowercase id safe for file names.
func GenerateRandString(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		sb.WriteByte(idAlphabet[n.Int64()])
	}
	return sb.String()
}

var unsafePathRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizePathName makes an arbitrary label safe as a file or directory name.
func SanitizePathName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafePathRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "unnamed"
	}
	return name
}

// NaturalSortPaths sorts file paths so that numbered names order numerically:
// clip_2.mp4 before clip_10.mp4. Ties fall back to plain lexical order.
func NaturalSortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return naturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
}

func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		if isDigit(a[ai]) && isDigit(b[bi]) {
			an, aEnd := readNum(a, ai)
			bn, bEnd := readNum(b, bi)
			if an != bn {
				return an < bn
			}
			ai, bi = aEnd, bEnd
			continue
		}
		if a[ai] != b[bi] {
			return a[ai] < b[bi]
		}
		ai++
		bi++
	}
	return len(a)-ai < len(b)-bi
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func readNum(s string, i int) (int, int) {
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	n, _ := strconv.Atoi(s[i:j])
	return n, j
}

// FormatDuration renders a second count compactly for run summaries.
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("%dm%02.0fs", m, s)
}

// FormatCost renders a dollar estimate for run summaries.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.2f", usd)
}
