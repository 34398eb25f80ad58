package protocol

import (
	"strings"

	"github.com/radassist/backend/internal/storage/models"
)

// contrastPhrases are the textual markers checked against procedure names.
var contrastPhrases = []string{
	"with iv contrast",
	"with and without",
	"w/ contrast",
	"w/wo",
}

// ProcedureNeedsContrast is the single contrast-need inference shared by the
// clinical rule cascade and the heuristic scorer. True when the explicit flag
// requires contrast or the procedure name carries a contrast phrase.
func ProcedureNeedsContrast(procedureName string, contrast models.ContrastUse) bool {
	if contrast == models.ContrastWith || contrast == models.ContrastWithWithout {
		return true
	}

	lower := strings.ToLower(procedureName)
	for _, phrase := range contrastPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}

// protocolUsesContrast reports whether a protocol's acquisition includes
// contrast.
func protocolUsesContrast(p *models.Protocol) bool {
	return p.Contrast == models.ContrastWith || p.Contrast == models.ContrastWithWithout
}
