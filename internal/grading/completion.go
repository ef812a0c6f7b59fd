package grading

import "wetmill-backend/internal/models"

var statusRank = map[string]int{
	models.SamplePending:   0,
	models.SampleTested:    1,
	models.SampleCompleted: 2,
}

// Advance returns the later of two sample statuses. Records never move
// back towards PENDING.
func Advance(current, next string) string {
	if statusRank[next] > statusRank[current] {
		return next
	}
	return current
}

// SampleComplete reports whether every tested grade key of a sample has a
// lab moisture, a full screen breakdown, a defect and a pp-score. Values
// count as present when they are not blank.
func SampleComplete(q *models.Quality) bool {
	for _, key := range q.Keys() {
		if q.LabMoisture[key].Empty() || q.Defect[key].Empty() || q.PPScore[key].Empty() {
			return false
		}
		screen := q.Screen[key]
		if len(screen) == 0 {
			return false
		}
		for _, size := range models.ScreenSizes {
			if screen[size].Empty() {
				return false
			}
		}
	}
	return true
}

// SampleStatus is the status a sample earns from its current fields.
func SampleStatus(q *models.Quality) string {
	if SampleComplete(q) {
		return models.SampleCompleted
	}
	return models.SampleTested
}

// DeliveryComplete reports whether a delivery test is finished. Delivery
// values are numeric, so zero counts as missing as well as blank.
func DeliveryComplete(d *models.QualityDelivery) bool {
	if d.LabMoisture == 0 || d.Defect == 0 || d.PPScore == 0 {
		return false
	}
	if len(d.Screen) == 0 {
		return false
	}
	for _, size := range models.ScreenSizes {
		if !validReading(d.Screen[size]) {
			return false
		}
	}
	return true
}

// validReading applies the delivery rule to a screen value.
func validReading(r models.Reading) bool {
	if r.Empty() {
		return false
	}
	return !r.Numeric() || r.Float() != 0
}

// DeliveryStatus is the status a delivery record earns from its fields.
func DeliveryStatus(d *models.QualityDelivery) string {
	if DeliveryComplete(d) {
		return models.SampleCompleted
	}
	return models.SampleTested
}
