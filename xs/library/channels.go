package library

import "sort"

// mtRange is an inclusive span of MT numbers.
type mtRange struct{ lo, hi int }

func (r mtRange) has(mt int) bool { return mt >= r.lo && mt <= r.hi }

// sumRules lists, for each summed MT, the MTs it is built from. A summed MT
// is redundant as soon as one of its components is present.
var sumRules = map[int][]mtRange{
	1:   {{2, 199}, {600, 849}, {875, 891}},
	3:   {{4, 199}, {600, 849}, {875, 891}},
	4:   {{50, 91}},
	16:  {{875, 891}},
	18:  {{19, 21}, {38, 38}},
	27:  {{18, 21}, {38, 38}, {101, 117}, {600, 849}},
	101: {{102, 117}, {600, 849}},
	103: {{600, 649}},
	104: {{650, 699}},
	105: {{700, 749}},
	106: {{750, 799}},
	107: {{800, 849}},
}

// fissionMTs are the channels that mark a nuclide fissionable.
var fissionMTs = []int{18, 19, 20, 21, 38}

// physical reports whether mt is a reaction channel rather than a derived
// or production quantity.
func physical(mt int) bool {
	return (mt >= 1 && mt < 200) || (mt >= 600 && mt <= 849) || (mt >= 875 && mt <= 891)
}

func anyIn(present map[int]bool, ranges []mtRange, self int) bool {
	for mt := range present {
		if mt == self || !physical(mt) {
			continue
		}
		for _, r := range ranges {
			if r.has(mt) {
				return true
			}
		}
	}
	return false
}

// Redundant reports whether mt is a sum of other channels present in mts.
func Redundant(mt int, mts []int) bool {
	present := make(map[int]bool, len(mts))
	for _, m := range mts {
		present[m] = true
	}
	return redundant(mt, present)
}

func redundant(mt int, present map[int]bool) bool {
	rule, ok := sumRules[mt]
	if !ok {
		return false
	}
	return anyIn(present, rule, mt)
}

// Channels returns the non-redundant physical channels of mts in ascending
// order. Their cross sections sum to the total.
func Channels(mts []int) []int {
	present := make(map[int]bool, len(mts))
	for _, m := range mts {
		present[m] = true
	}
	out := make([]int, 0, len(mts))
	for mt := range present {
		if physical(mt) && !redundant(mt, present) {
			out = append(out, mt)
		}
	}
	sort.Ints(out)
	return out
}

// Fissionable reports whether any fission channel is present.
func Fissionable(mts []int) bool {
	for _, m := range mts {
		for _, f := range fissionMTs {
			if m == f {
				return true
			}
		}
	}
	return false
}
