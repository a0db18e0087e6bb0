package content

import (
	"fmt"
	"unicode/utf8"

	"github.com/postcraft/postcraft/types"
)

// longSourceThreshold splits the two fallback caption templates: longer
// input gets an emoji-prefixed restatement, shorter input a generic
// celebratory phrasing.
const longSourceThreshold = 20

// Fallback synthesizes deterministic content for the requested fields.
// The copy is the product's Portuguese voice; image prompts stay English
// because the image providers are tuned for it.
func Fallback(network types.SocialNetwork, sourceText string, fields Fields) *types.GeneratedContent {
	out := &types.GeneratedContent{}

	if fields.Caption {
		if utf8.RuneCountInString(sourceText) > longSourceThreshold {
			out.Caption = fmt.Sprintf("🚀 %s\n\n✨ Conte-nos sua opinião nos comentários!", sourceText)
		} else {
			out.Caption = fmt.Sprintf("Novo conteúdo sobre %s! 🎉\n\n💭 O que você achou? Compartilhe conosco!", sourceText)
		}
	}

	if fields.Hashtags {
		out.Hashtags = []string{
			"#marketing", "#conteudo", "#digital", "#socialmedia",
			networkTag(network),
			"#engajamento", "#criatividade",
		}
	}

	if fields.CarouselPrompts {
		out.CarouselPrompts = []string{
			fmt.Sprintf("Professional %s post image about %s", network, sourceText),
			fmt.Sprintf("Modern design layout for %s content", sourceText),
			fmt.Sprintf("Engaging visual representation of %s", sourceText),
		}
	}

	return out
}

// StaticFallback is the network-agnostic content attached to the response
// envelope when text generation itself fails.
func StaticFallback() *types.GeneratedContent {
	return &types.GeneratedContent{
		Caption:  "Conteúdo gerado com sucesso! ✨\n\nCompartilhe sua opinião nos comentários! 💭",
		Hashtags: []string{"#conteudo", "#marketing", "#digital", "#criativo"},
		CarouselPrompts: []string{
			"Professional social media post design",
			"Modern digital marketing content",
			"Engaging social media graphics",
		},
	}
}

func networkTag(network types.SocialNetwork) string {
	switch network {
	case types.NetworkInstagram:
		return "#instagram"
	case types.NetworkLinkedIn:
		return "#linkedin"
	default:
		return "#tiktok"
	}
}
