package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radassist/backend/internal/storage/models"
)

func TestRepairRatingLevel(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		rating float64
		want   string
	}{
		{"empty stored value", "", 8, "Usually Appropriate"},
		{"numeric stored value", "5", 5, "May Be Appropriate"},
		{"numeric with whitespace", " 3 ", 3, "Usually Not Appropriate"},
		{"valid tier kept verbatim", "Usually Appropriate", 8, "Usually Appropriate"},
		{"valid tier kept even when inconsistent", "May Be Appropriate", 9, "May Be Appropriate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairRatingLevel(tt.stored, tt.rating))
		})
	}
}

func TestRepairModality(t *testing.T) {
	tests := []struct {
		name   string
		stored models.Modality
		proc   string
		want   models.Modality
	}{
		{"specific modality untouched", models.ModalityMRI, "MRI knee", models.ModalityMRI},
		{"cta inferred", models.ModalityOther, "CTA head and neck with IV contrast", models.Modality("CTA")},
		{"mra inferred", models.ModalityOther, "MRA brain without contrast", models.Modality("MRA")},
		{"mrv inferred", models.ModalityOther, "MR venography head", models.Modality("MRV")},
		{"pet inferred", models.ModalityOther, "FDG-PET whole body", models.ModalityPET},
		{"ultrasound inferred", models.ModalityOther, "Duplex Doppler lower extremity", models.ModalityUS},
		{"angiography inferred", models.ModalityOther, "Cerebral angiography", models.ModalityAngio},
		{"unrecognizable stays other", models.ModalityOther, "Procedure of record", models.ModalityOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairModality(tt.stored, tt.proc))
		})
	}
}
