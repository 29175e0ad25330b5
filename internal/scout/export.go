package scout

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/futscout/scout-engine/internal/models"
)

// ExportResults writes the team profile, the recruitment report and the
// current squad to the configured export directory. Files are overwritten on
// every export; the returned map names each written path.
func (e *Engine) ExportResults() (map[string]string, error) {
	if _, err := e.current(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.cfg.ExportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	paths := make(map[string]string, 3)

	profile, err := e.Profile()
	if err != nil {
		return nil, err
	}
	profilePath := filepath.Join(e.cfg.ExportDir, "team_profile.json")
	if err := writeJSON(profilePath, profile); err != nil {
		return nil, err
	}
	paths["team_profile"] = profilePath

	report, err := e.RecruitmentReport(0, 0)
	if err != nil {
		return nil, err
	}
	reportPath := filepath.Join(e.cfg.ExportDir, "recruitment_report.json")
	if err := writeJSON(reportPath, report); err != nil {
		return nil, err
	}
	paths["recruitment_report"] = reportPath

	squad, err := e.CurrentSquad()
	if err != nil {
		return nil, err
	}
	squadPath := filepath.Join(e.cfg.ExportDir, "current_squad.csv")
	if err := writeSquadCSV(squadPath, squad); err != nil {
		return nil, err
	}
	paths["current_squad"] = squadPath

	e.logger.WithField("export_dir", e.cfg.ExportDir).Info("Exported analysis results")
	return paths, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeSquadCSV(path string, squad *models.SquadOverview) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"player_name", "primary_position", "position_category", "season_name",
		"minutes", "goals_90", "assists_90", "np_xg_90", "obv_90",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range squad.Players {
		p := &squad.Players[i]
		row := []string{
			p.PlayerName,
			p.PrimaryPosition,
			p.PositionCategory,
			p.SeasonName,
			formatFloat(p.Minutes),
			formatFloat(p.Goals90),
			formatFloat(p.Assists90),
			formatFloat(p.NPxG90),
			formatFloat(p.OBV90),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
