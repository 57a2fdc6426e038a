// Package respond writes the final stylist answer from the retrieved candidates.
package respond

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
)

// Capability is the metric and log label of answer generation.
const Capability = "respond"

const (
	stylistInstruction = "You are a personal fashion stylist. " +
		"Your task is to explain how each of the recommended products match the user query. " +
		"Include the name, color, material of each product. " +
		"Do not forget to mention the price for each product. " +
		"Recommended products: %s."

	noMatchInstruction = "You are a personal fashion stylist. " +
		"No product in the catalog matches the user query. " +
		"Tell the user that nothing matched and suggest relaxing the price or category they asked for. " +
		"Do not invent products."

	personalizedSuffix = "\n\nPersonalise the answer by using customer preferences. Do not mention the categories."

	answerCue = "Your answer:"
)

// ChatModel generates the answer.
type ChatModel interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error)
}

// Input is everything the answer is composed from.
type Input struct {
	Query       string
	Candidates  []product.Record
	Preferences string // "" = no summary
}

// Composer builds the prompt and calls the model. It does not retry.
type Composer struct {
	chat         ChatModel
	personalized bool
}

// New creates a composer. personalize enables the purchase-history mode.
func New(chat ChatModel, personalize bool) *Composer {
	return &Composer{chat: chat, personalized: personalize}
}

// Personalizes reports whether in would be answered in personalized mode.
func (c *Composer) Personalizes(in Input) bool {
	return c.personalized && in.Preferences != ""
}

// Messages returns the prompt for in.
func (c *Composer) Messages(in Input) []domain.Message {
	system := noMatchInstruction
	if len(in.Candidates) > 0 {
		system = fmt.Sprintf(stylistInstruction, product.RenderAll(in.Candidates))
	}

	personalize := c.Personalizes(in)
	if personalize {
		system += personalizedSuffix
	}

	msgs := []domain.Message{domain.System(system), domain.User("User query: " + in.Query + ".")}
	if personalize {
		msgs = append(msgs, domain.User("Here are the customer preferences: "+in.Preferences+". "))
	}
	return append(msgs, domain.Assistant(answerCue))
}

// Compose generates the answer. Any model failure or an empty completion
// is reported as domain.ErrGenerationFailed.
func (c *Composer) Compose(ctx context.Context, in Input) (string, error) {
	res, err := c.chat.Chat(ctx, &domain.ChatRequest{
		Capability: Capability,
		Messages:   c.Messages(in),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	answer := res.Text()
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrGenerationFailed)
	}
	return answer, nil
}
