package recommend

import (
	"strconv"
	"strings"

	"github.com/radassist/backend/internal/rating"
	"github.com/radassist/backend/internal/storage/models"
)

// repairRatingLevel re-derives the display tier when the stored value is
// empty or purely numeric, a known data defect in the source dataset.
func repairRatingLevel(stored string, numericRating float64) string {
	trimmed := strings.TrimSpace(stored)
	if trimmed == "" {
		return string(rating.TierFor(numericRating))
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return string(rating.TierFor(numericRating))
	}
	return trimmed
}

// modality inference patterns for procedures stored with the generic "Other"
// placeholder, checked in order.
var modalityPatterns = []struct {
	substrings []string
	modality   models.Modality
}{
	{[]string{"cta", "ct angio"}, models.Modality("CTA")},
	{[]string{"mra", "mr angio"}, models.Modality("MRA")},
	{[]string{"mrv", "mr veno"}, models.Modality("MRV")},
	{[]string{"pet"}, models.ModalityPET},
	{[]string{"spect"}, models.Modality("SPECT")},
	{[]string{"arteriograph", "angiograph", "angiogram"}, models.ModalityAngio},
	{[]string{"ultrasound", "us ", "duplex", "doppler", "sonograph"}, models.ModalityUS},
}

// repairModality infers a specific modality from the procedure name when the
// stored modality is the "Other" placeholder.
func repairModality(stored models.Modality, procedureName string) models.Modality {
	if stored != models.ModalityOther {
		return stored
	}

	lower := strings.ToLower(procedureName) + " "
	for _, p := range modalityPatterns {
		for _, sub := range p.substrings {
			if strings.Contains(lower, sub) {
				return p.modality
			}
		}
	}

	return stored
}
