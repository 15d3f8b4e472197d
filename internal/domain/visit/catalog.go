// Package visit resolves a visit-type identifier into the layout profile
// shared by the data-entry and reporting surfaces. Both surfaces must call
// Resolve so their section sets never diverge; that single call site is the
// reason this lives as a standalone package instead of inline conditionals.
package visit

// AgeGroup is the coarse bucket driving which clinical sections apply.
type AgeGroup string

const (
	AgeGroupNewborn   AgeGroup = "newborn"
	AgeGroupInfant    AgeGroup = "infant"
	AgeGroupToddler   AgeGroup = "toddler"
	AgeGroupPreschool AgeGroup = "preschool"
)

// LayoutProfile is the set of section-visibility flags for one age group.
type LayoutProfile struct {
	Feeding          bool `json:"feeding"`
	Supplementation  bool `json:"supplementation"`
	VitaminD         bool `json:"vitamin_d"`
	Sleep            bool `json:"sleep"`
	PhysicalExam     bool `json:"physical_exam"`
	Milestones       bool `json:"milestones"`
	ProblemListing   bool `json:"problem_listing"`
	Conclusions      bool `json:"conclusions"`
	Plan             bool `json:"plan"`
	ClinicianComment bool `json:"clinician_comment"`
	NextVisit        bool `json:"next_visit"`
	AIAssistant      bool `json:"ai_assistant"`
}

// ageGroupByVisitType is the closed visit-type catalog. New identifiers
// added to the schema before this table is updated deliberately fall back
// to infant (see AgeGroupOf).
var ageGroupByVisitType = map[string]AgeGroup{
	"newborn_first":    AgeGroupNewborn,
	"newborn_repeat":   AgeGroupNewborn,
	"one_month":        AgeGroupInfant,
	"two_month":        AgeGroupInfant,
	"three_month":      AgeGroupInfant,
	"four_month":       AgeGroupInfant,
	"six_month":        AgeGroupInfant,
	"nine_month":       AgeGroupInfant,
	"twelve_month":     AgeGroupInfant,
	"eighteen_month":   AgeGroupToddler,
	"twentyfour_month": AgeGroupToddler,
	"thirtysix_month":  AgeGroupPreschool,
}

// youngProfile applies to newborns and infants; olderProfile to toddlers
// and preschoolers. The two differ only in the supplementation free-text
// section.
var (
	youngProfile = LayoutProfile{
		Feeding: true, Supplementation: true, VitaminD: true, Sleep: true,
		PhysicalExam: true, Milestones: true, ProblemListing: true,
		Conclusions: true, Plan: true, ClinicianComment: true,
		NextVisit: true, AIAssistant: true,
	}
	olderProfile = LayoutProfile{
		Feeding: true, Supplementation: false, VitaminD: true, Sleep: true,
		PhysicalExam: true, Milestones: true, ProblemListing: true,
		Conclusions: true, Plan: true, ClinicianComment: true,
		NextVisit: true, AIAssistant: true,
	}
)

// VisitTypes returns the closed catalog of known identifiers.
func VisitTypes() []string {
	ids := make([]string, 0, len(ageGroupByVisitType))
	for id := range ageGroupByVisitType {
		ids = append(ids, id)
	}
	return ids
}

// AgeGroupOf maps a visit-type identifier to its age group. Unrecognized
// identifiers fall back to infant: this is intentional forward
// compatibility so a schema that grows a new visit type before this build
// learns about it still renders a usable form.
func AgeGroupOf(visitTypeID string) AgeGroup {
	if g, ok := ageGroupByVisitType[visitTypeID]; ok {
		return g
	}
	return AgeGroupInfant
}

// ProfileOf returns the layout profile for an age group. The mapping is
// total over the four groups.
func ProfileOf(group AgeGroup) LayoutProfile {
	switch group {
	case AgeGroupNewborn, AgeGroupInfant:
		return youngProfile
	case AgeGroupToddler, AgeGroupPreschool:
		return olderProfile
	default:
		return youngProfile
	}
}

// Resolve maps a visit-type identifier to its layout profile. Data entry
// and reporting both go through this function.
func Resolve(visitTypeID string) LayoutProfile {
	return ProfileOf(AgeGroupOf(visitTypeID))
}
