package grading

import "wetmill-backend/internal/models"

// FilterTransfer removes grade keys already moved off the bagging-off from
// t's outputs and details, then refreshes the summary fields. It reports
// false when no key is left to move.
func FilterTransfer(t *models.Transfer, transferred map[string]bool) bool {
	outputs := make(map[string]float64, len(t.OutputKgs))
	for key, kg := range t.OutputKgs {
		if transferred[key] {
			continue
		}
		outputs[key] = kg
	}
	if len(outputs) == 0 {
		return false
	}

	details := make(map[string]models.GradeDetail, len(outputs))
	for key := range outputs {
		if d, ok := t.GradeDetails[key]; ok {
			details[key] = d
		}
	}

	t.OutputKgs = outputs
	t.GradeDetails = details
	Summarize(t)
	return true
}

// Summarize fills the display summary of a transfer. The first high key
// present supplies the cup profile; low keys only add bags.
func Summarize(t *models.Transfer) {
	t.NumberOfBags = 0
	t.CupProfile = nil
	t.CupProfilePercentage = nil

	for _, key := range models.TransferHighKeys {
		d, ok := t.GradeDetails[key]
		if !ok {
			continue
		}
		t.NumberOfBags += d.NumberOfBags
		if d.CupProfile != "" {
			profile := d.CupProfile
			t.CupProfile = &profile
		}
		if d.MoistureContent != 0 {
			moisture := d.MoistureContent
			t.CupProfilePercentage = &moisture
		}
		break
	}

	for _, key := range models.TransferLowKeys {
		if d, ok := t.GradeDetails[key]; ok {
			t.NumberOfBags += d.NumberOfBags
		}
	}
}

// Transferred builds the set of keys already moved: the persisted set on
// the bagging-off plus the keys of its earlier transfers.
func Transferred(persisted []string, earlier []*models.Transfer) map[string]bool {
	set := make(map[string]bool, len(persisted))
	for _, key := range persisted {
		set[key] = true
	}
	for _, t := range earlier {
		for key := range t.OutputKgs {
			set[key] = true
		}
	}
	return set
}

// Union returns existing plus any new keys, keeping the existing order.
func Union(existing []string, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, k := range append(append([]string{}, existing...), added...) {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
