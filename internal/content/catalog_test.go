package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)
	return cat
}

func TestLoadFile(t *testing.T) {
	cat := loadTestCatalog(t)

	assert.Equal(t, "v1.2.0", cat.SchemaVersion)
	assert.Len(t, cat.Modules, 4)
	assert.Len(t, cat.Lessons, 9)
	assert.Len(t, cat.SkillNodes, 3)
	assert.Len(t, cat.Achievements, 5)
	require.Len(t, cat.Challenges, 1)
	assert.Equal(t, "2026-10-18", cat.Challenges[0].Date)

	assert.Equal(t, TierSilver, cat.SkillNodes[1].Tier)
	assert.True(t, cat.SkillNodes[1].IsMilestone)
	assert.Equal(t, CriterionLessonCount, cat.Achievements[0].Criterion.Type)
	assert.Equal(t, 5, cat.Achievements[0].Criterion.Count)
	assert.Equal(t, "aero-fundamentals", cat.Achievements[1].Criterion.PathID)
}

func TestLoadFile_LessonOrderFromModule(t *testing.T) {
	cat := loadTestCatalog(t)
	for _, l := range cat.Lessons {
		if l.ID == "aero-l3" {
			assert.Equal(t, 3, l.Order)
			return
		}
	}
	t.Fatal("aero-l3 not found")
}

func TestLoadFile_SampleIsValid(t *testing.T) {
	require.NoError(t, loadTestCatalog(t).Validate())
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("schema_version: v1.0.0\nmodules:\n  - {id: m, discipline: d, colour: red}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestParse_RejectsBadTier(t *testing.T) {
	_, err := Parse([]byte("schema_version: v1.0.0\nskill_nodes:\n  - {id: s, discipline: d, tier: mithril}\n"))
	require.Error(t, err)
}

func TestParse_SchemaVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"v1 patch", "v1.0.3", false},
		{"v1 short", "v1", false},
		{"v2", "v2.0.0", true},
		{"missing v", "1.0.0", true},
		{"garbage", "latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte("schema_version: " + tt.version + "\n"))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedSchemaVersion))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParse_MissingVersion(t *testing.T) {
	_, err := Parse([]byte("modules: []\n"))
	require.Error(t, err)
}

func TestParse_UnquotedDates(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"unquoted", "2026-10-18"},
		{"quoted", `"2026-10-18"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "schema_version: v1.0.0\ndaily_challenges:\n" +
				"  - {id: dc-1, date: " + tt.date + ", discipline: aerospace, lesson: l1, title: Drag, xp_reward: 10}\n"
			cat, err := Parse([]byte(doc))
			require.NoError(t, err)
			require.Len(t, cat.Challenges, 1)
			assert.Equal(t, "2026-10-18", cat.Challenges[0].Date)

			day, err := cat.Challenges[0].Day()
			require.NoError(t, err)
			assert.Equal(t, 18, day.Day())
		})
	}
}

func TestParse_RejectsMalformedDate(t *testing.T) {
	doc := "schema_version: v1.0.0\ndaily_challenges:\n" +
		"  - {id: dc-1, date: 18/10/2026, discipline: aerospace, lesson: l1, title: Drag, xp_reward: 10}\n"
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestMarshalRoundTripKeepsTier(t *testing.T) {
	cat := loadTestCatalog(t)
	out, err := yaml.Marshal(cat)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "tier: diamond"))

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cat.SkillNodes, again.SkillNodes)
}

func TestDisciplineHelpers(t *testing.T) {
	cat := loadTestCatalog(t)

	assert.Equal(t, []Discipline{"aerospace", "electrical"}, cat.Disciplines())
	assert.Len(t, cat.ModulesFor("aerospace"), 3)
	assert.Len(t, cat.ModulesFor("electrical"), 1)
	assert.Len(t, cat.SkillTreeFor("aerospace"), 3)
	assert.Len(t, cat.AchievementsFor(CategoryGlobal), 2)
	assert.Empty(t, cat.ModulesFor("mechanical"))
}

func TestTier(t *testing.T) {
	for i, tier := range AllTiers() {
		assert.Equal(t, i+1, tier.Weight())
		parsed, err := ParseTier(strings.ToUpper(tier.String()))
		require.NoError(t, err)
		assert.Equal(t, tier, parsed)
	}
	assert.Equal(t, 0, TierUnknown.Weight())
	assert.False(t, TierUnknown.Valid())
	assert.True(t, TierBronze < TierDiamond)

	_, err := ParseTier("adamantium")
	assert.Error(t, err)
}
