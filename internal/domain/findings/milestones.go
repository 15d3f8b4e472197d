package findings

// milestoneLabels is the static developmental milestone catalog. The catalog
// is a rendering lookup only; which items a clinician assesses at a given
// visit is decided by the form, not here.
var milestoneLabels = map[string]string{
	"gm_head_control":    "holds head steady without support",
	"gm_rolls_over":      "rolls over in both directions",
	"gm_sits_unaided":    "sits without support",
	"gm_pulls_to_stand":  "pulls to stand",
	"gm_walks_alone":     "walks alone",
	"gm_runs":            "runs",
	"fm_grasps_object":   "grasps an offered object",
	"fm_transfers_hands": "transfers objects between hands",
	"fm_pincer_grasp":    "uses pincer grasp",
	"fm_scribbles":       "scribbles spontaneously",
	"fm_tower_of_cubes":  "builds a tower of cubes",
	"lg_coos":            "coos and makes vowel sounds",
	"lg_babbles":         "babbles with consonants",
	"lg_first_words":     "says first words",
	"lg_two_word_phrase": "combines two words",
	"lg_simple_sentence": "speaks in simple sentences",
	"so_social_smile":    "smiles responsively",
	"so_stranger_wary":   "shows wariness of strangers",
	"so_waves_bye":       "waves bye-bye",
	"so_parallel_play":   "engages in parallel play",
	"so_pretend_play":    "engages in pretend play",
}

// milestoneLabel renders a catalog identifier; unknown identifiers render
// as-is so an out-of-date catalog never drops a flagged item.
func milestoneLabel(id string) string {
	if label, ok := milestoneLabels[id]; ok {
		return label
	}
	return id
}
