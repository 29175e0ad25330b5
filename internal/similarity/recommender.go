// Package similarity finds statistically comparable players through cosine
// similarity over standardized per-position feature vectors.
package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/pkg/logger"
)

// Defaults for similarity queries.
const (
	DefaultTopN          = 10
	DefaultMinMinutes    = 500.0
	ProfileMinMinutes    = 900.0
	maxSuggestions       = 5
	similarityWeight     = 0.7
	contextWeight        = 0.3
	contextMinutesWeight = 0.6
	contextOBVWeight     = 0.4
)

// SearchOptions shape a similarity query. Use NewSearchOptions for the
// standard defaults; the zero value disables every filter.
type SearchOptions struct {
	PlayerName       string
	Position         string
	SamePositionOnly bool
	ExcludeSameTeam  bool
	TopN             int
	MinSimilarity    float64
}

// NewSearchOptions returns the default query: ten same-position players from
// other teams, no similarity floor.
func NewSearchOptions(playerName string) SearchOptions {
	return SearchOptions{
		PlayerName:       playerName,
		SamePositionOnly: true,
		ExcludeSameTeam:  true,
		TopN:             DefaultTopN,
	}
}

// ProfileWeights weight the attacking, defensive and passing feature groups
// in profile-based search.
type ProfileWeights struct {
	Attacking float64 `json:"attacking"`
	Defensive float64 `json:"defensive"`
	Passing   float64 `json:"passing"`
}

// DefaultProfileWeights returns the standard attack-leaning mix.
func DefaultProfileWeights() ProfileWeights {
	return ProfileWeights{Attacking: 0.5, Defensive: 0.3, Passing: 0.2}
}

// Recommender answers similarity and profile-search queries over a fitted
// player dataset. Fit must run before any query; after that the recommender
// is read-only and safe for concurrent use.
type Recommender struct {
	catalog       *features.Catalog
	pcaComponents int

	records    []models.PlayerSeasonRecord
	feats      *mat.Dense // raw normalized features, absent values as 0
	similarity *mat.Dense // pairwise cosine over standardized features
	projection *mat.Dense // principal-component scores, kept for exploration
	fitted     bool

	logger *logrus.Logger
}

// NewRecommender creates a similarity recommender over the given catalog.
// pcaComponents bounds the retained principal-component projection.
func NewRecommender(catalog *features.Catalog, pcaComponents int) *Recommender {
	return &Recommender{
		catalog:       catalog,
		pcaComponents: pcaComponents,
		logger:        logger.GetLogger(),
	}
}

// Fit indexes every record with at least minMinutes played: feature vectors
// are standardized across the whole pool and the full pairwise cosine matrix
// is precomputed so queries never touch raw data again.
func (r *Recommender) Fit(records []models.PlayerSeasonRecord, minMinutes float64) error {
	kept := make([]models.PlayerSeasonRecord, 0, len(records))
	for i := range records {
		if records[i].Minutes >= minMinutes {
			kept = append(kept, records[i])
		}
	}
	if len(kept) == 0 {
		return &models.InsufficientDataError{
			Operation: "fit similarity recommender",
			Reason:    fmt.Sprintf("no players with at least %.0f minutes", minMinutes),
		}
	}

	n := len(kept)
	d := len(r.catalog.NormalizedFeatures)

	feats := mat.NewDense(n, d, nil)
	for i := range kept {
		for j, feature := range r.catalog.NormalizedFeatures {
			if v, ok := kept[i].NormalizedFeature(feature); ok {
				feats.Set(i, j, v)
			}
		}
	}

	standardized := standardizeColumns(feats)

	r.records = kept
	r.feats = feats
	r.similarity = cosineMatrix(standardized)
	r.projection = principalProjection(standardized, r.pcaComponents)
	r.fitted = true

	r.logger.WithFields(logrus.Fields{
		"players":     n,
		"features":    d,
		"min_minutes": minMinutes,
	}).Info("Similarity recommender fitted")
	return nil
}

// Size reports the number of indexed player seasons.
func (r *Recommender) Size() int {
	return len(r.records)
}

// Projection returns the retained principal-component scores, or nil when the
// decomposition was skipped. Rows align with the fitted dataset.
func (r *Recommender) Projection() *mat.Dense {
	return r.projection
}

// FindSimilar returns the players statistically closest to the named one.
// The final ordering blends cosine similarity with a context score that
// rewards minutes played and on-ball value relative to the other candidates.
// The reference player never appears; an empty candidate pool yields an empty
// slice, not an error.
func (r *Recommender) FindSimilar(opts SearchOptions) ([]models.SimilarPlayer, error) {
	if !r.fitted {
		return nil, &models.InvalidStateError{
			Operation: "find similar players",
			Reason:    "recommender not fitted, call Fit first",
		}
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	idx, err := r.resolve(opts.PlayerName)
	if err != nil {
		return nil, err
	}
	query := &r.records[idx]

	targetPos := ""
	if opts.SamePositionOnly {
		targetPos = query.PositionCategory
	} else if opts.Position != "" {
		if cat := features.CanonicalCategory(opts.Position); cat != "" {
			targetPos = cat
		} else {
			targetPos = opts.Position
		}
	}

	type candidate struct {
		idx int
		sim float64
	}
	var candidates []candidate
	for i := range r.records {
		if i == idx {
			continue
		}
		rec := &r.records[i]
		if query.PlayerID != 0 && rec.PlayerID == query.PlayerID {
			continue
		}
		if targetPos != "" && rec.PositionCategory != targetPos {
			continue
		}
		if opts.ExcludeSameTeam && rec.TeamName == query.TeamName {
			continue
		}
		sim := r.similarity.At(idx, i)
		if sim < opts.MinSimilarity {
			continue
		}
		candidates = append(candidates, candidate{idx: i, sim: sim})
	}
	if len(candidates) == 0 {
		return []models.SimilarPlayer{}, nil
	}

	// Context is relative to this candidate pool, not the whole dataset.
	maxMinutes, maxOBV := 0.0, math.Inf(-1)
	for _, c := range candidates {
		rec := &r.records[c.idx]
		maxMinutes = math.Max(maxMinutes, rec.Minutes)
		maxOBV = math.Max(maxOBV, rec.OBV90)
	}

	results := make([]models.SimilarPlayer, 0, len(candidates))
	for _, c := range candidates {
		rec := &r.records[c.idx]
		context := 0.0
		if maxMinutes > 0 {
			context += contextMinutesWeight * rec.Minutes / maxMinutes
		}
		if maxOBV > 0 {
			context += contextOBVWeight * rec.OBV90 / maxOBV
		}
		results = append(results, models.SimilarPlayer{
			PlayerName:       rec.PlayerName,
			TeamName:         rec.TeamName,
			PositionCategory: rec.PositionCategory,
			PrimaryPosition:  rec.PrimaryPosition,
			Minutes:          rec.Minutes,
			FinalScore:       similarityWeight*c.sim + contextWeight*context,
			SimilarityScore:  c.sim,
			ContextScore:     context,
			Goals90:          rec.Goals90,
			Assists90:        rec.Assists90,
			NPxG90:           rec.NPxG90,
			OBV90:            rec.OBV90,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	if len(results) > opts.TopN {
		results = results[:opts.TopN]
	}
	return results, nil
}

// FindReplacements searches a widened same-position pool and keeps the top
// candidates, a shortcut for "who could step into this player's role".
func (r *Recommender) FindReplacements(playerName string, topN int) ([]models.SimilarPlayer, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	opts := NewSearchOptions(playerName)
	opts.TopN = topN * 3
	results, err := r.FindSimilar(opts)
	if err != nil {
		return nil, err
	}
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// RecommendByProfile ranks players at a position by a weighted blend of their
// attacking, defensive and passing feature groups.
func (r *Recommender) RecommendByProfile(position string, weights ProfileWeights, topN int, minMinutes float64) ([]models.ProfileScore, error) {
	if !r.fitted {
		return nil, &models.InvalidStateError{
			Operation: "recommend by profile",
			Reason:    "recommender not fitted, call Fit first",
		}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	category := features.CanonicalCategory(position)

	var results []models.ProfileScore
	for i := range r.records {
		rec := &r.records[i]
		if rec.PositionCategory != category || rec.Minutes < minMinutes {
			continue
		}
		attacking := r.groupScore(rec, "attacking")
		defensive := r.groupScore(rec, "defensive")
		passing := r.groupScore(rec, "passing")
		score := weights.Attacking*attacking + weights.Defensive*defensive + weights.Passing*passing
		results = append(results, models.ProfileScore{
			PlayerName:       rec.PlayerName,
			TeamName:         rec.TeamName,
			PositionCategory: rec.PositionCategory,
			Minutes:          rec.Minutes,
			Score:            math.Round(score*1000) / 10,
			AttackingScore:   attacking,
			DefensiveScore:   defensive,
			PassingScore:     passing,
		})
	}
	if len(results) == 0 {
		return nil, &models.InsufficientDataError{
			Operation: "recommend by profile",
			Reason:    fmt.Sprintf("no players found for position %s with at least %.0f minutes", position, minMinutes),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// FeatureImportance reports the features separating a player most from the
// average of their position group, largest absolute gap first.
func (r *Recommender) FeatureImportance(playerName string, topN int) ([]models.FeatureImportance, error) {
	if !r.fitted {
		return nil, &models.InvalidStateError{
			Operation: "feature importance",
			Reason:    "recommender not fitted, call Fit first",
		}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	idx, err := r.resolve(playerName)
	if err != nil {
		return nil, err
	}
	category := r.records[idx].PositionCategory

	d := len(r.catalog.NormalizedFeatures)
	sums := make([]float64, d)
	count := 0
	for i := range r.records {
		if r.records[i].PositionCategory != category {
			continue
		}
		for j := 0; j < d; j++ {
			sums[j] += r.feats.At(i, j)
		}
		count++
	}

	results := make([]models.FeatureImportance, 0, d)
	for j, feature := range r.catalog.NormalizedFeatures {
		avg := sums[j] / float64(count)
		val := r.feats.At(idx, j)
		results = append(results, models.FeatureImportance{
			Feature:         features.DisplayName(feature),
			PlayerValue:     val,
			PositionAverage: avg,
			Difference:      val - avg,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return math.Abs(results[i].Difference) > math.Abs(results[j].Difference)
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// resolve finds the record index for a case-insensitive substring query.
// Among several matches the alphabetically first name wins, most recent
// season first. A miss falls back to the query's first token and returns the
// near-miss names as suggestions.
func (r *Recommender) resolve(query string) (int, error) {
	best := -1
	for i := range r.records {
		if !containsFold(r.records[i].PlayerName, query) {
			continue
		}
		if best == -1 || recordBefore(&r.records[i], &r.records[best]) {
			best = i
		}
	}
	if best >= 0 {
		return best, nil
	}

	if fields := strings.Fields(query); len(fields) > 0 {
		token := fields[0]
		seen := make(map[string]bool)
		var suggestions []string
		for i := range r.records {
			name := r.records[i].PlayerName
			if containsFold(name, token) && !seen[name] {
				seen[name] = true
				suggestions = append(suggestions, name)
			}
		}
		if len(suggestions) > 0 {
			sort.Strings(suggestions)
			if len(suggestions) > maxSuggestions {
				suggestions = suggestions[:maxSuggestions]
			}
			return -1, &models.NotFoundError{Resource: "player", Query: query, Suggestions: suggestions}
		}
	}
	return -1, &models.NotFoundError{Resource: "player", Query: query}
}

func (r *Recommender) groupScore(rec *models.PlayerSeasonRecord, group string) float64 {
	var vals []float64
	for _, feature := range r.catalog.ProfileGroups[group] {
		if v, ok := rec.NormalizedFeature(feature); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// standardizeColumns centers and scales each column by its population
// standard deviation. Constant columns collapse to zero.
func standardizeColumns(m *mat.Dense) *mat.Dense {
	n, d := m.Dims()
	out := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, m)
		mean := stat.Mean(col, nil)
		std := stat.PopStdDev(col, nil)
		for i := 0; i < n; i++ {
			if std > 0 {
				out.Set(i, j, (col[i]-mean)/std)
			} else {
				out.Set(i, j, 0)
			}
		}
	}
	return out
}

// cosineMatrix computes pairwise cosine similarity between the rows of m.
// Zero-norm rows are similar to nothing, including themselves.
func cosineMatrix(m *mat.Dense) *mat.Dense {
	n, _ := m.Dims()
	var gram mat.Dense
	gram.Mul(m, m.T())

	norms := make([]float64, n)
	for i := 0; i < n; i++ {
		norms[i] = math.Sqrt(gram.At(i, i))
	}

	sim := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if norms[i] > 0 && norms[j] > 0 {
				sim.Set(i, j, gram.At(i, j)/(norms[i]*norms[j]))
			}
		}
	}
	return sim
}

// principalProjection projects the standardized features onto their leading
// principal components. Failure to decompose just drops the projection; the
// similarity pipeline never depends on it.
func principalProjection(m *mat.Dense, components int) *mat.Dense {
	n, d := m.Dims()
	if components <= 0 || n < 2 {
		return nil
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return nil
	}
	k := components
	if d < k {
		k = d
	}
	if n < k {
		k = n
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	var proj mat.Dense
	proj.Mul(m, vecs.Slice(0, d, 0, k))
	return &proj
}

func recordBefore(a, b *models.PlayerSeasonRecord) bool {
	if a.PlayerName != b.PlayerName {
		return a.PlayerName < b.PlayerName
	}
	return a.SeasonID > b.SeasonID
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
