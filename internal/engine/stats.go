package engine

import (
	"math"
	"sort"

	"focusquest/internal/storage"
)

// statPointDivisor converts XP gained into raw stat points before priority
// scaling.
const statPointDivisor = 36.0

// CalculateTaskStatGain distributes stat points earned by a completion
// across the category's weight vector. Points per completion are clamped to
// [1,4] plus up to 2 bonus points for level-ups. Integer rounding loss goes
// to the highest-weighted stat; with no usable weights everything lands on
// discipline.
func CalculateTaskStatGain(xpGain int, priority Priority, weights map[string]float64, levelUps int) map[string]int {
	scaled := float64(xpGain) / statPointDivisor * priority.StatMultiplier()
	base := int(math.Round(scaled))
	if base < 1 {
		base = 1
	}
	if base > 4 {
		base = 4
	}
	bonus := levelUps
	if bonus < 0 {
		bonus = 0
	}
	if bonus > 2 {
		bonus = 2
	}
	total := base + bonus

	usable := map[string]float64{}
	sum := 0.0
	for key, w := range weights {
		if !StatKey(key).IsValid() || w <= 0 {
			continue
		}
		usable[key] = w
		sum += w
	}
	if len(usable) == 0 || sum == 0 {
		return map[string]int{string(DefaultStat): total}
	}

	keys := make([]string, 0, len(usable))
	for key := range usable {
		keys = append(keys, key)
	}
	// Heaviest first; ties broken by key so the remainder target is stable.
	sort.Slice(keys, func(i, j int) bool {
		if usable[keys[i]] != usable[keys[j]] {
			return usable[keys[i]] > usable[keys[j]]
		}
		return keys[i] < keys[j]
	})

	gains := map[string]int{}
	allocated := 0
	for _, key := range keys {
		share := int(math.Floor(float64(total) * usable[key] / sum))
		if share > 0 {
			gains[key] = share
			allocated += share
		}
	}
	if remainder := total - allocated; remainder > 0 {
		gains[keys[0]] += remainder
	}
	return gains
}

// ApplyStatGains adds the deltas to the character's stats.
func ApplyStatGains(c *storage.Character, gains map[string]int) {
	if c.Stats == nil {
		c.Stats = map[string]int{}
	}
	for key, v := range gains {
		c.Stats[key] += v
	}
}

// RevertStatGains subtracts previously-applied deltas, flooring each stat
// at 1. Exact only for gains captured verbatim at award time.
func RevertStatGains(c *storage.Character, gains map[string]int) {
	if c.Stats == nil {
		return
	}
	for key, v := range gains {
		c.Stats[key] -= v
		if c.Stats[key] < 1 {
			c.Stats[key] = 1
		}
	}
}
