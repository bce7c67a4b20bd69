package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsosmon-backend-go/internal/models"
)

func person(id, name, division, igUsername string) models.Person {
	p := models.Person{ID: id, Name: name, Active: true}
	if division != "" {
		p.Division = strPtr(division)
	}
	if igUsername != "" {
		p.InstagramUsername = strPtr(igUsername)
	}
	return p
}

func TestComplianceThreshold(t *testing.T) {
	cases := []struct {
		total int
		ratio float64
		want  int
	}{
		{0, 0.5, 0},
		{-3, 0.5, 0},
		{1, 0.5, 1},
		{2, 0.5, 1},
		{3, 0.5, 2}, // half rounded up
		{4, 0.5, 2},
		{5, 0.5, 3},
		{10, 0.3, 3},
		{4, 0, 2}, // zero ratio falls back to the default half
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ComplianceThreshold(tc.total, tc.ratio), "total=%d ratio=%v", tc.total, tc.ratio)
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	persons := []models.Person{
		person("1", "Andi", "", "andi"),
		person("2", "Budi", "", "budi"),
		person("3", "Cici", "", "cici"),
	}
	counts := map[string]int{"andi": 2, "budi": 1, "cici": 0}

	// 4 posts, threshold ceil(4*0.5)=2.
	class := Classify(persons, counts, 4, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, class.Done, 1)
	assert.Equal(t, "1", class.Done[0].Person.ID)
	require.Len(t, class.Partial, 1)
	assert.Equal(t, "2", class.Partial[0].Person.ID)
	require.Len(t, class.None, 1)
	assert.Equal(t, "3", class.None[0].Person.ID)
	assert.Equal(t, 1, class.BelumTotal())
}

func TestClassifyNoUsernameBucket(t *testing.T) {
	persons := []models.Person{
		person("1", "Andi", "", "andi"),
		person("2", "Budi", "", ""),
	}
	class := Classify(persons, map[string]int{"andi": 1}, 1, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, class.NoUsername, 1)
	assert.Equal(t, "2", class.NoUsername[0].Person.ID)
	assert.Equal(t, 1, class.BelumTotal(), "noUsername counts toward belum")
	assert.Empty(t, class.None)
}

func TestClassifyExceptionAlwaysDone(t *testing.T) {
	noname := person("1", "Dedi", "", "")
	noname.Exception = true
	inactive := person("2", "Eka", "", "eka")
	inactive.Active = false

	class := Classify([]models.Person{noname, inactive}, nil, 10, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, class.Done, 1)
	assert.Equal(t, "1", class.Done[0].Person.ID)
	assert.Empty(t, class.NoUsername, "exception never lands in noUsername")
	assert.Empty(t, class.None)
	assert.Empty(t, class.Partial, "inactive persons are skipped entirely")
}

func TestClassifyZeroContentEveryoneDone(t *testing.T) {
	persons := []models.Person{person("1", "Andi", "", "andi")}
	class := Classify(persons, nil, 0, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, class.Done, 1, "threshold 0 means nothing was required")
}

func TestClassifyPlatformSelectsUsernameField(t *testing.T) {
	p := person("1", "Andi", "", "andi.ig")
	p.TiktokUsername = strPtr("@Andi.TT")

	igClass := Classify([]models.Person{p}, map[string]int{"andi.ig": 1}, 1, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, igClass.Done, 1)
	assert.Equal(t, "andi.ig", igClass.Done[0].Username)

	ttClass := Classify([]models.Person{p}, map[string]int{"andi.tt": 1}, 1, ClassifyOptions{Platform: PlatformTiktok})
	require.Len(t, ttClass.Done, 1)
	assert.Equal(t, "andi.tt", ttClass.Done[0].Username, "directory usernames are normalized")
}

func TestClassifyForPost(t *testing.T) {
	persons := []models.Person{
		person("1", "Andi", "", "andi"),
		person("2", "Budi", "", "budi"),
	}
	class := ClassifyForPost(persons, map[string]bool{"andi": true}, PlatformInstagram)
	require.Len(t, class.Done, 1)
	assert.Equal(t, "1", class.Done[0].Person.ID)
	require.Len(t, class.None, 1)
	assert.Equal(t, "2", class.None[0].Person.ID)
	assert.Empty(t, class.Partial, "per-post mode is engaged-or-not")
}

func TestClassifyDivisionOrdering(t *testing.T) {
	persons := []models.Person{
		person("1", "Zul", "POLSEK KOTA", "zul"),
		person("2", "Adi", "SAT LANTAS", "adi"),
		person("3", "Bud", "BAG OPS", "bud"),
		person("4", "Cep", "", "cep"),
		person("5", "Dod", "SPKT", "dod"),
		person("6", "Eko", "SAT INTELKAM", "eko"),
	}
	counts := map[string]int{"zul": 1, "adi": 1, "bud": 1, "cep": 1, "dod": 1, "eko": 1}
	class := Classify(persons, counts, 1, ClassifyOptions{Platform: PlatformInstagram})
	require.Len(t, class.Done, 6)

	order := make([]string, 0, 6)
	for _, entry := range class.Done {
		order = append(order, entry.Person.ID)
	}
	// BAG < SAT (INTELKAM < LANTAS) < SPKT < POLSEK < untagged.
	assert.Equal(t, []string{"3", "6", "2", "5", "1", "4"}, order)
}

func TestClassifyIsDeterministic(t *testing.T) {
	persons := []models.Person{
		person("b", "Sama", "SAT LANTAS", "x1"),
		person("a", "Sama", "SAT LANTAS", "x2"),
	}
	counts := map[string]int{"x1": 1, "x2": 1}
	first := Classify(persons, counts, 1, ClassifyOptions{Platform: PlatformInstagram})
	for i := 0; i < 5; i++ {
		again := Classify(persons, counts, 1, ClassifyOptions{Platform: PlatformInstagram})
		assert.Equal(t, first, again)
	}
	// Equal division and name falls back to the id tiebreak.
	assert.Equal(t, "a", first.Done[0].Person.ID)
}

func TestClassifyTwoPostWindow(t *testing.T) {
	a := person("a", "A", "", "a")
	b := person("b", "B", "", "b")
	c := person("c", "C", "", "")
	d := person("d", "D", "", "d")
	d.Exception = true

	// Two posts with like-sets {a,b} and {b}: threshold is 1.
	counts := map[string]int{"a": 1, "b": 2}
	class := Classify([]models.Person{a, b, c, d}, counts, 2, ClassifyOptions{Platform: PlatformInstagram})

	done := make([]string, 0, len(class.Done))
	for _, entry := range class.Done {
		done = append(done, entry.Person.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "d"}, done)
	assert.Empty(t, class.Partial)
	assert.Empty(t, class.None)
	require.Len(t, class.NoUsername, 1)
	assert.Equal(t, "c", class.NoUsername[0].Person.ID)
}

func TestFormattedName(t *testing.T) {
	p := person("1", "Budi Santoso", "", "")
	assert.Equal(t, "Budi Santoso", FormattedName(p))
	p.Rank = strPtr("AIPTU")
	assert.Equal(t, "AIPTU Budi Santoso", FormattedName(p))
	p.Rank = strPtr("  ")
	assert.Equal(t, "Budi Santoso", FormattedName(p))
}
