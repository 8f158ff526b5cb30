package usecase

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

const (
	DefaultHomeHeader      = "👋 Welcome to the Frum Finance App!"
	DefaultProfileQuestion = "How did you first find frum.finance?"
)

// ProfileConfig holds the texts of the Home tab profile form
type ProfileConfig struct {
	Header   string
	Question string
}

func (x ProfileConfig) withDefaults() ProfileConfig {
	if x.Header == "" {
		x.Header = DefaultHomeHeader
	}
	if x.Question == "" {
		x.Question = DefaultProfileQuestion
	}
	return x
}

// buildHomeViewBlocks renders the Home tab. A stored response is shown
// read-only; otherwise the question is asked with an input and a submit button.
func buildHomeViewBlocks(cfg ProfileConfig, existing *string) []goslack.Block {
	header := fmt.Sprintf("%s \n\n 📝 Profile Question: %s", cfg.Header, cfg.Question)

	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, header, false, false),
			nil, nil,
		),
		goslack.NewDividerBlock(),
	}

	if existing != nil {
		return append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, "\n Your response: "+*existing, false, false),
			nil, nil,
		))
	}

	input := goslack.NewPlainTextInputBlockElement(
		goslack.NewTextBlockObject(goslack.PlainTextType, "Please enter your response", false, false),
		ProfileInputID,
	)
	submit := goslack.NewButtonBlockElement(
		SubmitActionID, "submit",
		goslack.NewTextBlockObject(goslack.PlainTextType, "Submit", false, false),
	).WithStyle(goslack.StylePrimary)

	return append(blocks,
		goslack.NewInputBlock(
			ProfileBlockID,
			goslack.NewTextBlockObject(goslack.PlainTextType, "Answer:", false, false),
			nil,
			input,
		),
		goslack.NewActionBlock(SubmitBlockID, submit),
	)
}

func confirmationMessage(cfg ProfileConfig, answer string) string {
	return fmt.Sprintf("Thank you for submitting your response!\n 📝 Profile Question: %s : %s", cfg.Question, answer)
}
