package services

import (
	"math"
	"sort"
	"strings"

	"medsosmon-backend-go/internal/models"
)

// ClassifiedPerson is one person's compliance outcome within a window.
type ClassifiedPerson struct {
	Person   models.Person
	Username string
	Count    int
}

// Classification holds the compliance buckets in deterministic order.
// NoUsername persons count toward the headline "belum" total but are
// reported in their own labeled sub-list.
type Classification struct {
	Done       []ClassifiedPerson
	Partial    []ClassifiedPerson
	None       []ClassifiedPerson
	NoUsername []ClassifiedPerson
}

// BelumTotal is the headline not-done count: none plus no-username.
func (c Classification) BelumTotal() int {
	return len(c.None) + len(c.NoUsername)
}

type ClassifyOptions struct {
	// Platform selects which username field of the person is measured.
	Platform string
	// ThresholdRatio is the share of the window's content a person must
	// have engaged with to be done. The business rule is half, rounded up.
	ThresholdRatio float64
}

const DefaultThresholdRatio = 0.5

// ComplianceThreshold is the minimum engaged-post count for the done bucket.
func ComplianceThreshold(totalContent int, ratio float64) int {
	if ratio <= 0 {
		ratio = DefaultThresholdRatio
	}
	if totalContent <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalContent) * ratio))
}

// Classify joins the per-username counts against the person directory and
// buckets each active person. Exception persons are always done regardless
// of measured activity and never land in noUsername or none.
func Classify(persons []models.Person, counts map[string]int, totalContent int, opts ClassifyOptions) Classification {
	threshold := ComplianceThreshold(totalContent, opts.ThresholdRatio)
	var result Classification
	for _, person := range persons {
		if !person.Active {
			continue
		}
		username := platformUsername(person, opts.Platform)
		if person.Exception {
			result.Done = append(result.Done, ClassifiedPerson{Person: person, Username: username, Count: counts[username]})
			continue
		}
		if username == "" {
			result.NoUsername = append(result.NoUsername, ClassifiedPerson{Person: person})
			continue
		}
		count := counts[username]
		entry := ClassifiedPerson{Person: person, Username: username, Count: count}
		switch {
		case count >= threshold:
			result.Done = append(result.Done, entry)
		case count > 0:
			result.Partial = append(result.Partial, entry)
		default:
			result.None = append(result.None, entry)
		}
	}
	sortBucket(result.Done)
	sortBucket(result.Partial)
	sortBucket(result.None)
	sortBucket(result.NoUsername)
	return result
}

// ClassifyForPost is the per-post reporting mode: each person is measured
// against a single post's engagement set, so the threshold degenerates to
// "engaged or not".
func ClassifyForPost(persons []models.Person, engaged map[string]bool, platform string) Classification {
	counts := make(map[string]int, len(engaged))
	for username := range engaged {
		counts[username] = 1
	}
	return Classify(persons, counts, 1, ClassifyOptions{Platform: platform})
}

func platformUsername(person models.Person, platform string) string {
	switch platform {
	case PlatformTiktok:
		if person.TiktokUsername != nil {
			return NormalizeUsername(*person.TiktokUsername)
		}
	default:
		if person.InstagramUsername != nil {
			return NormalizeUsername(*person.InstagramUsername)
		}
	}
	return ""
}

// divisionPriorities orders organizational subdivisions in reports: staff
// bureaus first, then operational units, then sector stations, then the
// rest alphabetically.
var divisionPriorities = []string{"BAG", "SAT", "SI", "SPKT", "POLSEK"}

func divisionRank(division string) int {
	upper := strings.ToUpper(strings.TrimSpace(division))
	for i, prefix := range divisionPriorities {
		if strings.HasPrefix(upper, prefix) {
			return i
		}
	}
	return len(divisionPriorities)
}

func personDivision(person models.Person) string {
	if person.Division == nil {
		return ""
	}
	return strings.TrimSpace(*person.Division)
}

// FormattedName is the report display form: rank then name.
func FormattedName(person models.Person) string {
	if person.Rank != nil && strings.TrimSpace(*person.Rank) != "" {
		return strings.TrimSpace(*person.Rank) + " " + strings.TrimSpace(person.Name)
	}
	return strings.TrimSpace(person.Name)
}

func sortBucket(bucket []ClassifiedPerson) {
	sort.SliceStable(bucket, func(i, j int) bool {
		divI := personDivision(bucket[i].Person)
		divJ := personDivision(bucket[j].Person)
		rankI := divisionRank(divI)
		rankJ := divisionRank(divJ)
		if rankI != rankJ {
			return rankI < rankJ
		}
		upperI := strings.ToUpper(divI)
		upperJ := strings.ToUpper(divJ)
		if upperI != upperJ {
			return upperI < upperJ
		}
		nameI := strings.ToUpper(FormattedName(bucket[i].Person))
		nameJ := strings.ToUpper(FormattedName(bucket[j].Person))
		if nameI != nameJ {
			return nameI < nameJ
		}
		return bucket[i].Person.ID < bucket[j].Person.ID
	})
}
