package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/draftdeck/draftdeck-backend/internal/docgen"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/types"
	"github.com/draftdeck/draftdeck-backend/internal/verification"
)

// ProseGenerator is the pipeline's only AI dependency. The orchestrator and
// dispatcher treat it as an opaque call that may fail or time out.
type ProseGenerator interface {
	GenerateProse(ctx context.Context, docType string, project *types.Project, feedback string) (verification.Prose, error)
}

type proseGenerator struct {
	log *logger.Logger
	ai  OpenAIClient
}

func NewProseGenerator(baseLog *logger.Logger, ai OpenAIClient) ProseGenerator {
	return &proseGenerator{
		log: baseLog.With("service", "ProseGenerator"),
		ai:  ai,
	}
}

// GenerateProse asks the model for exactly the sections the verification
// engine will later require, as a strict JSON schema. Numeric terms are given
// to the model for narrative context; templates render the authoritative
// figures either way.
func (pg *proseGenerator) GenerateProse(ctx context.Context, docType string, project *types.Project, feedback string) (verification.Prose, error) {
	keys := verification.RequiredProseKeys(docType)
	if len(keys) == 0 {
		return verification.Prose{}, nil
	}

	properties := map[string]any{}
	for _, key := range keys {
		properties[key] = map[string]any{"type": "string"}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             keys,
		"additionalProperties": false,
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Draft the narrative sections of a %s.\n", docgen.Title(docType))
	fmt.Fprintf(&user, "Counterparty: %s\n", project.CounterpartyName)
	if project.ApprovedAmount > 0 {
		fmt.Fprintf(&user, "Principal amount: %.2f\nAnnual interest rate: %.4f\nTerm in months: %d\n", project.ApprovedAmount, project.InterestRate, project.TermMonths)
	}
	fmt.Fprintf(&user, "Sections required: %s\n", strings.Join(keys, ", "))
	if strings.TrimSpace(feedback) != "" {
		fmt.Fprintf(&user, "Reviewer feedback to address: %s\n", feedback)
	}

	obj, err := pg.ai.GenerateJSON(ctx,
		"You draft precise, formal narrative sections for legal finance documents. State every figure you are given exactly as provided.",
		user.String(),
		docType+"_prose",
		schema,
	)
	if err != nil {
		return nil, fmt.Errorf("generate prose for %s: %w", docType, err)
	}
	return verification.Prose(obj), nil
}
