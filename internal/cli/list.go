package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RevCBH/skill-harness/internal/criteria"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// listSkills prints every skill with an acceptance-criteria document and
// how many scenarios it has
func (a *App) listSkills(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	loader := &criteria.Loader{BaseDir: a.opts.BaseDir, SkillsDir: cfg.SkillsDir, CriteriaFile: cfg.CriteriaFile}
	scenarios := &scenario.Loader{BaseDir: a.opts.BaseDir, Dir: cfg.ScenariosDir}

	skills, err := loader.ListSkills()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(skills) == 0 {
		fmt.Fprintf(out, "No skills with acceptance criteria under %s\n", filepath.Join(a.opts.BaseDir, cfg.SkillsDir))
		return nil
	}

	width := 0
	for _, skill := range skills {
		width = max(width, len(skill))
	}

	fmt.Fprintf(out, "Skills with acceptance criteria (%d):\n", len(skills))
	for _, skill := range skills {
		fmt.Fprintf(out, "  %-*s  %s\n", width, skill, scenarioCount(scenarios, skill))
	}
	return nil
}

func scenarioCount(l *scenario.Loader, skill string) string {
	f, err := l.Load(skill)
	switch {
	case errors.Is(err, scenario.ErrNotFound):
		return "no scenarios"
	case err != nil:
		return "invalid scenarios"
	case len(f.Scenarios) == 1:
		return "1 scenario"
	}
	return fmt.Sprintf("%d scenarios", len(f.Scenarios))
}
