package content

import (
	"fmt"
	"strings"

	"github.com/postcraft/postcraft/types"
)

// Per-network style guidance appended to the system prompt. Each network
// has its own copy-length and tone rules.
var networkGuidelines = map[types.SocialNetwork]string{
	types.NetworkInstagram: "- Caption: Max 2200 caracteres, emojis, CTA claro\n- Hashtags: Mix populares e nicho\n- Imagens: Visuais, cores vibrantes",
	types.NetworkLinkedIn:  "- Caption: Tom profissional, max 3000 caracteres\n- Hashtags: Focadas em negócios\n- Imagens: Profissionais, corporativas",
	types.NetworkTikTok:    "- Caption: Concisa, linguagem jovem\n- Hashtags: Trending + nicho\n- Imagens: Dinâmicas, coloridas",
}

// BuildSystemPrompt composes the system prompt: target network and
// template, exactly the JSON fields the request asked for, the network's
// style guidance, and an optional custom instruction block.
func BuildSystemPrompt(req *types.GenerationRequest) string {
	var requested []string
	if req.GenerateImages {
		requested = append(requested, `"carousel_prompts": [array de 3-5 prompts detalhados em inglês para geração de imagens]`)
	}
	if req.GenerateCaption {
		requested = append(requested, `"caption": "legenda em português, engajante e persuasiva"`)
	}
	if req.GenerateHashtags {
		requested = append(requested, `"hashtags": [array de 10-15 hashtags relevantes]`)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Você é um especialista em marketing digital. Gere conteúdo para %s no formato %s.\n\n", req.Network, req.TemplateID)
	b.WriteString("IMPORTANTE: Responda SEMPRE em JSON válido com:\n{\n  ")
	b.WriteString(strings.Join(requested, ",\n  "))
	b.WriteString("\n}\n\n")

	fmt.Fprintf(&b, "Diretrizes para %s:\n", req.Network)
	if guidelines, ok := networkGuidelines[req.Network]; ok {
		b.WriteString(guidelines)
		b.WriteString("\n")
	}

	if req.CustomPrompt != "" {
		fmt.Fprintf(&b, "\nINSTRUÇÕES PERSONALIZADAS: %s", req.CustomPrompt)
	}

	return b.String()
}

// BuildUserPrompt composes the user prompt: the custom prompt verbatim
// when supplied, otherwise the default instruction around the source text.
func BuildUserPrompt(req *types.GenerationRequest) string {
	if req.CustomPrompt != "" {
		return req.CustomPrompt
	}
	return fmt.Sprintf("Crie conteúdo profissional e engajante para: %s", req.SourceText())
}
