// Package caption suggests Instagram captions for content cards through a
// text-generation provider.
package caption

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
)

// ErrNoProvider is returned by Suggest when no generator is configured.
var ErrNoProvider = errors.New("caption provider not configured")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request carries the card and client details the prompt is built from.
type Request struct {
	Title  string
	Kind   string
	Pillar string
	Niche  string
	Tone   string
}

// Service wraps a Generator. A nil generator is allowed and makes every
// request fall back to the error text.
type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// Available reports whether a generator is configured.
func (s *Service) Available() bool {
	return s != nil && s.gen != nil
}

const promptTemplate = `Você é um social media sênior. Crie uma legenda para Instagram para o seguinte post:
- Título: %s
- Formato: %s
- Pilar de conteúdo: %s
- Nicho do Cliente: %s
- Tom de voz: %s

Regras:
1. Seja criativo e use emojis moderadamente.
2. Comece com um gancho forte (Hook).
3. Use parágrafos curtos.
4. Inclua uma CTA (Chamada para ação) no final.
5. Adicione 3 a 5 hashtags relevantes no final.
`

// Prompt renders the request as the provider prompt.
func Prompt(r Request) string {
	return fmt.Sprintf(promptTemplate, r.Title, r.Kind, r.Pillar, r.Niche, r.Tone)
}

// Suggest asks the generator for a caption and returns its errors.
func (s *Service) Suggest(ctx context.Context, r Request) (string, error) {
	if !s.Available() {
		return "", ErrNoProvider
	}
	text, err := s.gen.Generate(ctx, Prompt(r))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateCaption never fails: an empty answer yields the "could not
// generate" text and any provider error yields the communication error text.
func (s *Service) GenerateCaption(ctx context.Context, title, kind, pillar, niche, tone string) string {
	text, err := s.Suggest(ctx, Request{Title: title, Kind: kind, Pillar: pillar, Niche: niche, Tone: tone})
	if err != nil {
		logger.Error("failed to generate caption", "title", title, "error", err)
		return constants.CaptionErrorFallback
	}
	if text == "" {
		return constants.CaptionEmptyFallback
	}
	return text
}
