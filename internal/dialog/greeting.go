package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/stratushq/stratus/internal/profile"
)

// GreetingID names the greeting dialog in the registry.
const GreetingID = "greeting"

// Greeting steps: what the next user message answers.
const (
	stepName = iota
	stepCity
)

const (
	promptName = "Hello! What's your name?"
	promptCity = "What city do you live in?"
)

// GreetingDialog introduces the bot, collects the user's name and city into
// the shared profile, and greets returning users by name. Steps whose answer
// is already on the profile are skipped.
type GreetingDialog struct{}

func NewGreeting() *GreetingDialog {
	return &GreetingDialog{}
}

func (d *GreetingDialog) ID() string { return GreetingID }

func (d *GreetingDialog) Begin(ctx context.Context, dc *Context) (Status, error) {
	p, err := dc.Profile.Get(ctx)
	if err != nil {
		return StatusEmpty, err
	}

	frame := dc.Active()
	switch {
	case p.Name == "":
		dc.Turn.SendText(promptName)
		frame.Step = stepName
		return StatusWaiting, nil
	case p.City == "":
		dc.Turn.SendText(fmt.Sprintf("Hi %s! %s", p.Name, promptCity))
		frame.Step = stepCity
		return StatusWaiting, nil
	default:
		dc.Turn.SendText(fmt.Sprintf("Hello %s, nice to see you again!", p.Name))
		return StatusComplete, nil
	}
}

func (d *GreetingDialog) Continue(ctx context.Context, dc *Context) (Status, error) {
	text := strings.TrimSpace(dc.Turn.Activity.Text)
	if text == "" {
		if err := d.Reprompt(ctx, dc); err != nil {
			return StatusWaiting, err
		}
		return StatusWaiting, nil
	}

	p, err := dc.Profile.Get(ctx)
	if err != nil {
		return StatusWaiting, err
	}

	frame := dc.Active()
	switch frame.Step {
	case stepName:
		p.Name = profile.Capitalize(text)
		if err := dc.Profile.Set(p); err != nil {
			return StatusWaiting, err
		}
		if p.City == "" {
			dc.Turn.SendText(fmt.Sprintf("Nice to meet you, %s! %s", p.Name, promptCity))
			frame.Step = stepCity
			return StatusWaiting, nil
		}
		dc.Turn.SendText(fmt.Sprintf("Nice to meet you, %s!", p.Name))
		return StatusComplete, nil

	case stepCity:
		p.City = profile.Capitalize(text)
		if err := dc.Profile.Set(p); err != nil {
			return StatusWaiting, err
		}
		dc.Turn.SendText(fmt.Sprintf("Thanks %s, I'll remember you live in %s.", p.Name, p.City))
		return StatusComplete, nil

	default:
		return StatusComplete, nil
	}
}

func (d *GreetingDialog) Reprompt(ctx context.Context, dc *Context) error {
	frame := dc.Active()
	if frame == nil {
		return nil
	}
	switch frame.Step {
	case stepName:
		dc.Turn.SendText(promptName)
	case stepCity:
		dc.Turn.SendText(promptCity)
	}
	return nil
}
