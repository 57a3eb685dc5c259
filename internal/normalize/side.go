package normalize

import (
	"strings"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

var (
	overKeywords  = []string{"over", "+", "more"}
	underKeywords = []string{"under", "-", "fewer", "less"}
)

// ClassifySide maps an outcome display name to over/under. Yes/no outcomes
// only count on markets that are configured as yes/no.
func ClassifySide(outcomeName string, yesNoMarket bool) models.Side {
	name := strings.ToLower(strings.TrimSpace(outcomeName))

	if containsAny(name, overKeywords) {
		return models.SideOver
	}
	if containsAny(name, underKeywords) {
		return models.SideUnder
	}

	if yesNoMarket {
		switch name {
		case "yes":
			return models.SideOver
		case "no":
			return models.SideUnder
		}
	}

	return models.SideUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
