package content

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/curriculum/internal/unlock"
)

// ValidationError lists every structural problem found in a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Validate checks the catalog for authoring mistakes. It returns a
// *ValidationError describing all problems found, or nil if the catalog is
// clean. The engine tolerates invalid catalogs (it fails closed); this is a
// tool for content authors.
func (c *Catalog) Validate() error {
	var errs []string

	moduleIDs := make(map[string]Discipline, len(c.Modules))
	for _, m := range c.Modules {
		if _, dup := moduleIDs[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate module ID: %q", m.ID))
			continue
		}
		moduleIDs[m.ID] = m.Discipline
	}

	lessonIDs := make(map[string]string, len(c.Lessons))
	for _, l := range c.Lessons {
		if _, dup := lessonIDs[l.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate lesson ID: %q", l.ID))
		}
		lessonIDs[l.ID] = l.ModuleID
		if _, ok := moduleIDs[l.ModuleID]; !ok {
			errs = append(errs, fmt.Sprintf("lesson %q references nonexistent module %q", l.ID, l.ModuleID))
		}
		if l.XPReward < 0 {
			errs = append(errs, fmt.Sprintf("lesson %q: xp_reward must be >= 0, got %d", l.ID, l.XPReward))
		}
	}

	for _, m := range c.Modules {
		for _, id := range m.LessonIDs {
			owner, ok := lessonIDs[id]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("module %q lists nonexistent lesson %q", m.ID, id))
			case owner != m.ID:
				errs = append(errs, fmt.Sprintf("module %q lists lesson %q owned by module %q", m.ID, id, owner))
			}
		}
	}

	errs = append(errs, graphProblems("module", moduleNodes(c.Modules))...)

	nodeIDs := make(map[string]bool, len(c.SkillNodes))
	for _, n := range c.SkillNodes {
		nodeIDs[n.ID] = true
		if !n.Tier.Valid() {
			errs = append(errs, fmt.Sprintf("skill node %q has no valid tier", n.ID))
		}
		if n.XPRequired < 0 {
			errs = append(errs, fmt.Sprintf("skill node %q: xp_required must be >= 0, got %d", n.ID, n.XPRequired))
		}
		if n.LessonID != "" {
			if _, ok := lessonIDs[n.LessonID]; !ok {
				errs = append(errs, fmt.Sprintf("skill node %q links nonexistent lesson %q", n.ID, n.LessonID))
			}
		}
	}
	errs = append(errs, graphProblems("skill node", skillNodes(c.SkillNodes))...)

	achIDs := make(map[string]bool, len(c.Achievements))
	for _, a := range c.Achievements {
		if achIDs[a.ID] {
			errs = append(errs, fmt.Sprintf("duplicate achievement ID: %q", a.ID))
		}
		achIDs[a.ID] = true
		errs = append(errs, criterionProblems(a, moduleIDs)...)
	}

	challengeIDs := make(map[string]bool, len(c.Challenges))
	for _, ch := range c.Challenges {
		if challengeIDs[ch.ID] {
			errs = append(errs, fmt.Sprintf("duplicate daily challenge ID: %q", ch.ID))
		}
		challengeIDs[ch.ID] = true
		if _, err := ch.Day(); err != nil {
			errs = append(errs, fmt.Sprintf("daily challenge %q: %v", ch.ID, err))
		}
		if ch.LessonID != "" {
			if _, ok := lessonIDs[ch.LessonID]; !ok {
				errs = append(errs, fmt.Sprintf("daily challenge %q references nonexistent lesson %q", ch.ID, ch.LessonID))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

// criterionProblems checks the fields a criterion type reads. moduleIDs maps
// each module to its discipline.
func criterionProblems(a AchievementType, moduleIDs map[string]Discipline) []string {
	cr := a.Criterion
	prefix := fmt.Sprintf("achievement %q criterion %q", a.ID, cr.Type)
	switch cr.Type {
	case CriterionLessonCount, CriterionSkillNodeCount, CriterionChallengeCount:
		if cr.Count <= 0 {
			return []string{fmt.Sprintf("%s: count must be > 0, got %d", prefix, cr.Count)}
		}
	case CriterionPathCompletion:
		if cr.PathID == "" {
			return []string{fmt.Sprintf("%s: path is required", prefix)}
		}
		d, ok := moduleIDs[cr.PathID]
		if !ok {
			return []string{fmt.Sprintf("%s: references nonexistent path %q", prefix, cr.PathID)}
		}
		if a.Category != CategoryGlobal && string(d) != a.Category {
			return []string{fmt.Sprintf("%s: path %q belongs to discipline %q, not %q", prefix, cr.PathID, d, a.Category)}
		}
	case CriterionDisciplineProgress:
		if cr.Percentage <= 0 || cr.Percentage > 100 {
			return []string{fmt.Sprintf("%s: percentage must be in (0, 100], got %d", prefix, cr.Percentage)}
		}
	case CriterionStreakDays:
		if cr.Days <= 0 {
			return []string{fmt.Sprintf("%s: days must be > 0, got %d", prefix, cr.Days)}
		}
	case CriterionTotalXP:
		if cr.XP <= 0 {
			return []string{fmt.Sprintf("%s: xp must be > 0, got %d", prefix, cr.XP)}
		}
	default:
		return []string{fmt.Sprintf("%s: unknown criterion type", prefix)}
	}
	return nil
}

func graphProblems(kind string, nodes []unlock.Node) []string {
	g := unlock.Build(nodes)
	var errs []string
	var cycle []string
	for _, is := range g.Issues() {
		switch is.Kind {
		case unlock.IssueDuplicate:
			errs = append(errs, fmt.Sprintf("duplicate %s ID: %q", kind, is.NodeID))
		case unlock.IssueDangling:
			errs = append(errs, fmt.Sprintf("%s %q references nonexistent prerequisite %q", kind, is.NodeID, is.Ref))
		case unlock.IssueCycle:
			cycle = append(cycle, is.NodeID)
		}
	}
	if len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("%s cycle detected involving: %s", kind, strings.Join(cycle, ", ")))
		if behind := blockedBehind(g, cycle); len(behind) > 0 {
			errs = append(errs, fmt.Sprintf("%d of %d %s IDs can never unlock behind the cycle: %s",
				len(behind), g.Len(), kind, strings.Join(behind, ", ")))
		}
	}
	return errs
}

// blockedBehind returns the nodes that are not on a cycle but depend on one,
// directly or transitively.
func blockedBehind(g *unlock.Graph, cycle []string) []string {
	seen := make(map[string]bool)
	queue := slices.Clone(cycle)
	var behind []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, d := range g.Dependents(id) {
			if seen[d] || g.InCycle(d) {
				continue
			}
			seen[d] = true
			behind = append(behind, d)
			queue = append(queue, d)
		}
	}
	sort.Strings(behind)
	return behind
}

// ModuleGraph builds the prerequisite graph over modules.
func ModuleGraph(modules []Module) *unlock.Graph {
	return unlock.Build(moduleNodes(modules))
}

// SkillGraph builds the prerequisite graph over skill nodes.
func SkillGraph(nodes []SkillNode) *unlock.Graph {
	return unlock.Build(skillNodes(nodes))
}

func moduleNodes(modules []Module) []unlock.Node {
	nodes := make([]unlock.Node, len(modules))
	for i, m := range modules {
		nodes[i] = unlock.Node{ID: m.ID, Prerequisites: m.Prerequisites}
	}
	return nodes
}

func skillNodes(skill []SkillNode) []unlock.Node {
	nodes := make([]unlock.Node, len(skill))
	for i, n := range skill {
		nodes[i] = unlock.Node{ID: n.ID, Prerequisites: n.Prerequisites, XPRequired: n.XPRequired}
	}
	return nodes
}
