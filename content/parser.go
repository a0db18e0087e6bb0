// Package content turns raw model output into typed post content.
//
// Model responses are untrusted and loosely structured: the JSON payload
// may be wrapped in prose, code fences, or both, or be missing entirely.
// The parser is total - it always returns usable content, synthesizing a
// deterministic fallback when extraction fails.
package content

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/types"
)

// Fields selects which content fields a request asked for. Fallback
// synthesis only populates requested fields.
type Fields struct {
	Caption         bool
	Hashtags        bool
	CarouselPrompts bool
}

// Source tags where parsed content came from.
type Source string

const (
	// SourceParsed means the model response carried valid JSON.
	SourceParsed Source = "parsed"
	// SourceFallback means the response was unusable and deterministic
	// fallback content was synthesized instead.
	SourceFallback Source = "fallback"
)

// Parser extracts a GeneratedContent payload from raw model text.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a content parser.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger.With(zap.String("component", "parser"))}
}

var (
	jsonFenceRe   = regexp.MustCompile("```json\n?")
	fenceRe       = regexp.MustCompile("```\n?")
	jsonPrefixRe  = regexp.MustCompile(`(?i)^\s*json\s*`)
)

// Parse extracts the JSON object embedded in rawText. On any failure it
// falls back to synthesized content for the requested fields; it never
// returns an error to the caller.
func (p *Parser) Parse(rawText string, network types.SocialNetwork, sourceText string, fields Fields) (*types.GeneratedContent, Source) {
	parsed, err := extractJSON(rawText)
	if err != nil {
		p.logger.Warn("JSON parse failed, using fallback", zap.Error(err))
		return Fallback(network, sourceText, fields), SourceFallback
	}
	p.logger.Info("JSON parsed successfully")
	return parsed, SourceParsed
}

// extractJSON performs the two-stage extraction: slice between the first
// '{' and the last '}' to shed surrounding prose, strip code-fence
// markers, then strict-parse.
func extractJSON(rawText string) (*types.GeneratedContent, error) {
	jsonText := strings.TrimSpace(rawText)

	start := strings.Index(jsonText, "{")
	end := strings.LastIndex(jsonText, "}")
	if start != -1 && end != -1 && end > start {
		jsonText = jsonText[start : end+1]
	}

	jsonText = jsonFenceRe.ReplaceAllString(jsonText, "")
	jsonText = fenceRe.ReplaceAllString(jsonText, "")
	jsonText = jsonPrefixRe.ReplaceAllString(jsonText, "")
	jsonText = strings.TrimSpace(jsonText)

	var parsed types.GeneratedContent
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, types.NewError(types.ErrParse, "model response is not valid JSON").WithCause(err)
	}
	return &parsed, nil
}
