// Package normalizer standardizes player metrics within position groups so a
// striker's output is always read against other strikers, never against
// defenders or goalkeepers.
package normalizer

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/futscout/scout-engine/internal/features"
	"github.com/futscout/scout-engine/internal/models"
	"github.com/futscout/scout-engine/pkg/logger"
)

// Normalizer computes per-position z-scores for every normalizable metric.
type Normalizer struct {
	catalog *features.Catalog
	logger  *logrus.Logger
}

// New creates a position normalizer over the given catalog.
func New(catalog *features.Catalog) *Normalizer {
	return &Normalizer{
		catalog: catalog,
		logger:  logger.GetLogger(),
	}
}

// Normalize fills each record's Normalized map with z-scores computed within
// its position group: (value - group mean) / group sample std. Groups with
// zero variance (including single-member groups) normalize to exactly 0 so a
// lone goalkeeper never looks like an extreme outlier. Metrics with no values
// in a group are skipped for that group. Raw values and the record count are
// left untouched.
func (n *Normalizer) Normalize(records []models.PlayerSeasonRecord) {
	groups := make(map[string][]int)
	for i := range records {
		groups[records[i].PositionCategory] = append(groups[records[i].PositionCategory], i)
	}

	computed := 0
	for _, metric := range n.catalog.NormalizableMetrics {
		feature := metric + "_norm"
		for _, idxs := range groups {
			vals := make([]float64, 0, len(idxs))
			present := make([]int, 0, len(idxs))
			for _, i := range idxs {
				if v, ok := records[i].RawMetric(metric); ok {
					vals = append(vals, v)
					present = append(present, i)
				}
			}
			if len(vals) == 0 {
				continue
			}

			mean := stat.Mean(vals, nil)
			std := stat.StdDev(vals, nil)
			if std > 0 {
				for k, i := range present {
					records[i].SetNormalized(feature, (vals[k]-mean)/std)
				}
			} else {
				// Zero variance or a single member: the std is 0 or NaN,
				// either way every member sits at the group center.
				for _, i := range present {
					records[i].SetNormalized(feature, 0)
				}
			}
			computed++
		}
	}

	n.logger.WithFields(logrus.Fields{
		"records":         len(records),
		"position_groups": len(groups),
		"metric_groups":   computed,
	}).Info("Normalized player metrics within position groups")
}
