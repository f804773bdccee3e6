package language

import (
	"unicode"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // en - first entry is the matcher fallback
	language.Hindi,   // hi
	language.Marathi, // mr
}

var matcher = language.NewMatcher(supported)

// Normalize maps a caller-declared BCP 47 tag onto a supported language.
// Unknown or malformed tags fall back to English.
func Normalize(tag string) policyModel.Language {
	if tag == "" {
		return policyModel.LangEnglish
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return policyModel.LangEnglish
	}
	_, index, _ := matcher.Match(parsed)
	switch index {
	case 1:
		return policyModel.LangHindi
	case 2:
		return policyModel.LangMarathi
	default:
		return policyModel.LangEnglish
	}
}

// Detect guesses the language of undeclared text by script. Hindi and
// Marathi share Devanagari, so without a declared tag Devanagari text is
// treated as Hindi; callers that know better should declare.
func Detect(text string) policyModel.Language {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return policyModel.LangHindi
		}
	}
	return policyModel.LangEnglish
}

func Name(lang policyModel.Language) string {
	switch lang {
	case policyModel.LangHindi:
		return "Hindi"
	case policyModel.LangMarathi:
		return "Marathi"
	default:
		return "English"
	}
}

// Disclaimer is appended to answers whose confidence lands below the floor.
func Disclaimer(lang policyModel.Language) string {
	switch lang {
	case policyModel.LangHindi:
		return "कृपया ध्यान दें: इस उत्तर की पुष्टि नहीं हो पाई है। सटीक जानकारी के लिए अपनी पॉलिसी दस्तावेज़ देखें या बीमा कंपनी से संपर्क करें।"
	case policyModel.LangMarathi:
		return "कृपया लक्षात घ्या: या उत्तराची खात्री करता आलेली नाही. अचूक माहितीसाठी आपले पॉलिसी दस्तऐवज पाहा किंवा विमा कंपनीशी संपर्क साधा."
	default:
		return "Please note: this answer could not be fully verified. Check your policy document or contact your insurer for the exact terms."
	}
}

// NoMatchMessage is the answer text when no document clears the relevance
// threshold. Stating "not found" is mandatory; substituting unrelated
// context is not an option.
func NoMatchMessage(lang policyModel.Language) string {
	switch lang {
	case policyModel.LangHindi:
		return "उपलब्ध पॉलिसी दस्तावेज़ों में इस प्रश्न से संबंधित जानकारी नहीं मिली।"
	case policyModel.LangMarathi:
		return "उपलब्ध पॉलिसी दस्तऐवजांमध्ये या प्रश्नाशी संबंधित माहिती आढळली नाही."
	default:
		return "I could not find information related to this question in the available policy documents."
	}
}

// HedgeMarkers lists uncertainty wording the confidence scorer penalizes.
func HedgeMarkers(lang policyModel.Language) []string {
	switch lang {
	case policyModel.LangHindi:
		return []string{"शायद", "संभवतः", "हो सकता है", "मुझे यकीन नहीं"}
	case policyModel.LangMarathi:
		return []string{"कदाचित", "बहुधा", "असू शकते", "मला खात्री नाही"}
	default:
		return []string{
			"might", "may be", "possibly", "perhaps", "i am not sure",
			"i'm not sure", "it seems", "unclear", "cannot determine",
			"not certain", "i don't know",
		}
	}
}
