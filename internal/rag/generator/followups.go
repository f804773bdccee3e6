package generator

import (
	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

// Follow-up suggestions point the user at the sections adjacent to the ones
// their answer already cited. Templates, not generations: suggestions must
// never assert policy facts.
var followUpTemplates = map[policyModel.Language]map[policyModel.SectionLabel]string{
	policyModel.LangEnglish: {
		policyModel.SectionCoverage:  "What else does this policy cover?",
		policyModel.SectionExclusion: "Which treatments are excluded from this policy?",
		policyModel.SectionClaims:    "How do I file a claim under this policy?",
		policyModel.SectionPremium:   "What happens if a premium payment is missed?",
	},
	policyModel.LangHindi: {
		policyModel.SectionCoverage:  "यह पॉलिसी और क्या-क्या कवर करती है?",
		policyModel.SectionExclusion: "इस पॉलिसी में कौन से उपचार शामिल नहीं हैं?",
		policyModel.SectionClaims:    "इस पॉलिसी के तहत क्लेम कैसे करें?",
		policyModel.SectionPremium:   "अगर प्रीमियम का भुगतान छूट जाए तो क्या होगा?",
	},
	policyModel.LangMarathi: {
		policyModel.SectionCoverage:  "ही पॉलिसी आणखी काय कव्हर करते?",
		policyModel.SectionExclusion: "या पॉलिसीमध्ये कोणते उपचार वगळले आहेत?",
		policyModel.SectionClaims:    "या पॉलिसीअंतर्गत क्लेम कसा करावा?",
		policyModel.SectionPremium:   "प्रीमियम भरायचा राहिला तर काय होते?",
	},
}

var followUpOrder = []policyModel.SectionLabel{
	policyModel.SectionCoverage,
	policyModel.SectionExclusion,
	policyModel.SectionClaims,
	policyModel.SectionPremium,
}

func suggestFollowUps(target policyModel.Language, citations []policyModel.Citation) []string {
	templates, ok := followUpTemplates[target]
	if !ok {
		templates = followUpTemplates[policyModel.LangEnglish]
	}

	cited := make(map[policyModel.SectionLabel]struct{})
	for _, s := range sortedSections(citations) {
		cited[s] = struct{}{}
	}

	suggestions := make([]string, 0, 3)
	for _, section := range followUpOrder {
		if _, already := cited[section]; already {
			continue
		}
		suggestions = append(suggestions, templates[section])
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}
