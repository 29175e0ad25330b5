package features

import "strings"

// DisplayName turns a feature key into a human-readable label:
// "player_season_np_xg_90_norm" becomes "Np Xg 90".
func DisplayName(feature string) string {
	name := strings.TrimPrefix(feature, "player_season_")
	name = strings.TrimPrefix(name, "team_season_")
	name = strings.TrimSuffix(name, "_norm")
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
