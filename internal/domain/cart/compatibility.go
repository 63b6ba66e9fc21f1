package cart

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// voltagePattern matches digits immediately followed by a V. It is a text
// heuristic and will also match unrelated numbers such as "100V" PV limits.
var voltagePattern = regexp.MustCompile(`(\d+)[Vv]`)

// incompatiblePairs are checked in order, the first pair present wins
var incompatiblePairs = [][2]int{
	{12, 24},
	{12, 48},
	{24, 48},
}

// Voltages returns the distinct voltage ratings mentioned in the name and
// description of the given lines, ascending.
func Voltages(items []Line) []int {
	seen := make(map[int]struct{})
	for _, line := range items {
		text := line.Product.Name + " " + line.Product.Description
		for _, m := range voltagePattern.FindAllStringSubmatch(text, -1) {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			seen[v] = struct{}{}
		}
	}

	voltages := make([]int, 0, len(seen))
	for v := range seen {
		voltages = append(voltages, v)
	}
	sort.Ints(voltages)
	return voltages
}

// CompatibilityWarning returns an advisory when the cart mixes equipment for
// different battery bank voltages.
func CompatibilityWarning(items []Line) (string, bool) {
	found := make(map[int]bool)
	for _, v := range Voltages(items) {
		found[v] = true
	}

	for _, pair := range incompatiblePairs {
		if found[pair[0]] && found[pair[1]] {
			return fmt.Sprintf(
				"Your cart mixes %dV and %dV equipment. Make sure all components share the same system voltage.",
				pair[0], pair[1],
			), true
		}
	}
	return "", false
}
