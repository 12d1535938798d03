package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/dialog"
	"github.com/stratushq/stratus/internal/nlu"
	"github.com/stratushq/stratus/internal/profile"
	"github.com/stratushq/stratus/internal/state"
	"github.com/stratushq/stratus/internal/weather"
)

const (
	msgWelcome          = "Welcome! Ask me about today's weather or the 5 day forecast, and say hello to introduce yourself."
	msgDidNotUnderstand = "Sorry, I didn't understand that. Try asking about the weather, or say help."
)

// Bot routes inbound activities: it consults the intent classifier, answers
// direct questions, and drives the dialog stack for everything else.
type Bot struct {
	recognizer nlu.Recognizer
	weather    *weather.Service
	store      state.Store
	dialogs    *dialog.Set
	log        zerolog.Logger
	now        func() time.Time
}

// New fails fast on missing collaborators so a misconfigured bot never
// reaches its first turn.
func New(recognizer nlu.Recognizer, svc *weather.Service, store state.Store, dialogs *dialog.Set, logger zerolog.Logger) (*Bot, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("bot requires a recognizer")
	}
	if svc == nil {
		return nil, fmt.Errorf("bot requires a weather service")
	}
	if store == nil {
		return nil, fmt.Errorf("bot requires a state store")
	}
	if dialogs == nil {
		return nil, fmt.Errorf("bot requires a dialog set")
	}
	return &Bot{
		recognizer: recognizer,
		weather:    svc,
		store:      store,
		dialogs:    dialogs,
		log:        logger.With().Str("component", "bot").Logger(),
		now:        time.Now,
	}, nil
}

// OnTurn processes one activity to completion. State changes are saved only
// when the whole turn succeeds; a failed turn changes nothing.
func (b *Bot) OnTurn(ctx context.Context, tc *activity.TurnContext) error {
	mgr := state.NewManager(b.store)

	var err error
	switch tc.Activity.Type {
	case activity.TypeMessage:
		err = b.onMessage(ctx, tc, mgr)
	case activity.TypeConversationUpdate:
		err = b.onConversationUpdate(ctx, tc)
	default:
		b.log.Debug().Str("type", tc.Activity.Type).Msg("ignoring activity type")
	}
	if err != nil {
		return err
	}

	return mgr.SaveChanges(ctx)
}

func (b *Bot) onMessage(ctx context.Context, tc *activity.TurnContext, mgr *state.Manager) error {
	act := tc.Activity

	result, err := b.recognizer.Recognize(ctx, act.Text)
	if err != nil {
		return fmt.Errorf("recognize: %w", err)
	}
	topIntent, score := result.TopIntent()
	b.log.Debug().Str("intent", topIntent).Float64("score", score).Msg("classified utterance")

	prof := profile.NewAccessor(mgr, state.UserKey(act.ChannelID, act.From.ID))
	if err := b.updateProfile(ctx, prof, result); err != nil {
		return err
	}

	convKey := state.ConversationKey(act.ChannelID, act.Conversation.ID)
	var ds dialog.State
	if _, err := mgr.Get(ctx, convKey, &ds); err != nil {
		return err
	}
	dc := dialog.NewContext(b.dialogs, &ds, tc, prof)

	interrupted, err := b.checkInterruption(ctx, dc, result)
	if err != nil {
		return err
	}

	if interrupted {
		// The direct answer is out; put the paused dialog back on track.
		if err := dc.Reprompt(ctx); err != nil {
			return err
		}
	} else {
		status, err := dc.Continue(ctx)
		if err != nil {
			return err
		}
		if !tc.Responded() && status == dialog.StatusEmpty {
			switch topIntent {
			case nlu.IntentGreeting:
				if _, err := dc.Begin(ctx, dialog.GreetingID); err != nil {
					return err
				}
			default:
				tc.SendText(msgDidNotUnderstand)
			}
		}
	}

	return mgr.Set(convKey, ds)
}

// onConversationUpdate welcomes each new member and primes the weather cache
// so their first question is answered from a warm snapshot. The bot's own
// join is not announced.
func (b *Bot) onConversationUpdate(ctx context.Context, tc *activity.TurnContext) error {
	act := tc.Activity
	for _, member := range act.MembersAdded {
		if member.ID == act.Recipient.ID {
			continue
		}
		if err := b.weather.Refresh(ctx); err != nil {
			return err
		}
		tc.SendText(msgWelcome)
	}
	return nil
}
