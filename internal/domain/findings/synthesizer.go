// Package findings turns the structured state of one visit into the ordered
// problem-listing text a clinician reviews before writing conclusions. The
// synthesis is pure: the same snapshot always yields the same lines, and a
// re-run overwrites the previous listing rather than appending to it.
package findings

import (
	"fmt"
	"strings"

	"github.com/wellchild/wellchild/internal/domain/growth"
	"github.com/wellchild/wellchild/internal/domain/visit"
)

// examSystems fixes the reporting order of physical-exam body systems. Rows
// are evaluated in this order regardless of entry order in the snapshot.
var examSystems = []struct {
	name    string
	finding func(*ExamFindings) SystemFinding
}{
	{"skin", func(e *ExamFindings) SystemFinding { return e.Skin }},
	{"head", func(e *ExamFindings) SystemFinding { return e.Head }},
	{"eyes", func(e *ExamFindings) SystemFinding { return e.Eyes }},
	{"ears", func(e *ExamFindings) SystemFinding { return e.Ears }},
	{"mouth", func(e *ExamFindings) SystemFinding { return e.Mouth }},
	{"heart", func(e *ExamFindings) SystemFinding { return e.Heart }},
	{"lungs", func(e *ExamFindings) SystemFinding { return e.Lungs }},
	{"abdomen", func(e *ExamFindings) SystemFinding { return e.Abdomen }},
	{"genitourinary", func(e *ExamFindings) SystemFinding { return e.Genitourinary }},
	{"musculoskeletal", func(e *ExamFindings) SystemFinding { return e.Musculoskeletal }},
	{"neurological", func(e *ExamFindings) SystemFinding { return e.Neurological }},
}

// Synthesize evaluates the fixed rule sequence over a snapshot and returns
// the resulting listing, one line per finding. Sections hidden by the layout
// profile contribute nothing even when their data is abnormal. A nil
// velocity, or one without a computable rate, skips the weight-gain rule.
func Synthesize(snap Snapshot, profile visit.LayoutProfile, vel *growth.VelocityResult) []string {
	lines := []string{}

	if s := strings.TrimSpace(snap.ParentalConcerns); s != "" {
		lines = append(lines, fmt.Sprintf("Parents report concerns: %s", s))
	}

	if profile.Feeding {
		lines = append(lines, feedingLines(snap.Feeding, profile)...)
	}

	if !snap.Stool.Normal {
		if s := strings.TrimSpace(snap.Stool.Comment); s != "" {
			lines = append(lines, fmt.Sprintf("Stool pattern abnormal: %s", s))
		} else {
			lines = append(lines, "Stool pattern reported as abnormal")
		}
	}

	if profile.Sleep {
		lines = append(lines, sleepLines(snap.Sleep)...)
	}

	if profile.PhysicalExam {
		for _, sys := range examSystems {
			f := sys.finding(&snap.Exam)
			if f.Normal {
				continue
			}
			if s := strings.TrimSpace(f.Comment); s != "" {
				lines = append(lines, fmt.Sprintf("Physical exam, %s: %s", sys.name, s))
			} else {
				lines = append(lines, fmt.Sprintf("Physical exam, %s: abnormal finding", sys.name))
			}
		}
	}

	if profile.Milestones {
		lines = append(lines, milestoneLines(snap.Milestones)...)
	}

	for _, sc := range snap.Screening {
		if sc.Score == nil {
			continue
		}
		if *sc.Score < sc.Cutoff {
			lines = append(lines, fmt.Sprintf(
				"Developmental screening, %s: score %d below cutoff %d", sc.Domain, *sc.Score, sc.Cutoff))
		}
	}

	if profile.PhysicalExam {
		if s := strings.TrimSpace(snap.ExamNotes); s != "" {
			lines = append(lines, fmt.Sprintf("Exam notes: %s", s))
		}
	}

	if vel != nil && vel.HasRate() && !vel.Adequate {
		lines = append(lines, fmt.Sprintf(
			"Weight gain %d g/day over the last %d days is below the expected minimum",
			vel.RatePerDay, vel.ElapsedDays))
	}

	return lines
}

func feedingLines(f FeedingFindings, profile visit.LayoutProfile) []string {
	var lines []string
	if !f.Normal {
		if s := strings.TrimSpace(f.Comment); s != "" {
			lines = append(lines, fmt.Sprintf("Feeding difficulties: %s", s))
		} else {
			lines = append(lines, "Feeding reported as abnormal")
		}
	}
	if f.DairyIntake.IsSet() {
		switch f.DairyIntake.Kind {
		case DairyStructuredCode:
			if f.DairyIntake.Code >= DairyIntakeMaxCode {
				lines = append(lines, "Dairy intake at the maximum reported frequency")
			}
		case DairyFreeText:
			if s := strings.TrimSpace(f.DairyIntake.Text); s != "" {
				lines = append(lines, fmt.Sprintf("Dairy intake note: %s", s))
			}
		}
	}
	if profile.Supplementation {
		if s := strings.TrimSpace(f.Supplementation); s != "" {
			lines = append(lines, fmt.Sprintf("Supplementation: %s", s))
		}
	}
	return lines
}

func sleepLines(s SleepFindings) []string {
	var lines []string
	if !s.Normal {
		if c := strings.TrimSpace(s.Comment); c != "" {
			lines = append(lines, fmt.Sprintf("Sleep difficulties: %s", c))
		} else {
			lines = append(lines, "Sleep reported as abnormal")
		}
	}
	if s.HoursPerDay != nil && *s.HoursPerDay < SleepHoursFlagBelow {
		lines = append(lines, fmt.Sprintf(
			"Sleep duration %.1f h/day is below %.0f h", *s.HoursPerDay, SleepHoursFlagBelow))
	}
	return lines
}

func milestoneLines(items []MilestoneFinding) []string {
	var flagged []MilestoneFinding
	for _, m := range items {
		if m.Status != MilestoneAchieved && m.Status != "" {
			flagged = append(flagged, m)
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	lines := []string{"Milestones not yet achieved:"}
	for _, m := range flagged {
		label := milestoneLabel(m.ID)
		if m.Status == MilestoneInProgress {
			lines = append(lines, fmt.Sprintf("  - %s (in progress)", label))
		} else {
			lines = append(lines, fmt.Sprintf("  - %s", label))
		}
	}
	return lines
}
