package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/dialog"
	"github.com/stratushq/stratus/internal/nlu"
	"github.com/stratushq/stratus/internal/weather"
)

const (
	msgWeatherUnavailable = "I don't have any weather data right now, please try again soon."
	msgForecastApology    = "I'm sorry, I can only tell you the weather for the next 5 days."
	msgCancelConfirmed    = "Okay, I've cancelled our conversation."
	msgNothingToCancel    = "I have nothing to cancel."
)

var helpMessages = [...]string{
	"I can answer questions about today's weather or the 5 day forecast.",
	"Try asking: what's the weather like today, or: will it rain on Saturday.",
	"Say hello to introduce yourself, or cancel to stop what we're doing.",
}

// interruptionRoute binds one intent to its direct-answer handler.
type interruptionRoute struct {
	intent  string
	handler func(b *Bot, ctx context.Context, dc *dialog.Context, result *nlu.Result) error
}

// interruptionRoutes is evaluated in order; the first matching intent wins.
var interruptionRoutes = []interruptionRoute{
	{intent: nlu.IntentTodaysWeather, handler: (*Bot).sendTodaysWeather},
	{intent: nlu.IntentWeatherForecast, handler: (*Bot).sendForecast},
	{intent: nlu.IntentCancel, handler: (*Bot).cancelDialogs},
	{intent: nlu.IntentHelp, handler: (*Bot).sendHelp},
}

// checkInterruption answers direct questions ahead of whatever dialog is
// active. It reports true when a route handled the turn.
func (b *Bot) checkInterruption(ctx context.Context, dc *dialog.Context, result *nlu.Result) (bool, error) {
	topIntent, _ := result.TopIntent()
	for _, route := range interruptionRoutes {
		if route.intent != topIntent {
			continue
		}
		if err := route.handler(b, ctx, dc, result); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (b *Bot) sendTodaysWeather(ctx context.Context, dc *dialog.Context, result *nlu.Result) error {
	current, err := b.weather.Current()
	if errors.Is(err, weather.ErrUnavailable) {
		dc.Turn.SendText(msgWeatherUnavailable)
		return nil
	}
	if err != nil {
		return err
	}

	text := fmt.Sprintf("It's currently %s and %d°F.",
		current.Description, weather.KelvinToFahrenheit(current.TemperatureK))
	dc.Turn.SendActivity(withCategoryImage(dc.Turn.Activity.Reply(text), current.Category))
	return nil
}

func (b *Bot) sendForecast(ctx context.Context, dc *dialog.Context, result *nlu.Result) error {
	forecast, err := b.weather.Forecast()
	if errors.Is(err, weather.ErrUnavailable) {
		dc.Turn.SendText(msgWeatherUnavailable)
		return nil
	}
	if err != nil {
		return err
	}

	// Resolving against a reference one week out lets expressions like
	// "Saturday" land inside the coming forecast window.
	ref := b.now().AddDate(0, 0, 7)
	day, ok := nlu.ResolveToDate(result.DateTimes, ref)
	if !ok {
		dc.Turn.SendText(msgForecastApology)
		return nil
	}

	target := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.Local)
	entry, ok := forecast.FindAt(target)
	if !ok {
		dc.Turn.SendText(msgForecastApology)
		return nil
	}

	text := fmt.Sprintf("%s will be %s and %d°F.",
		entry.Time.Weekday(), entry.Description, weather.KelvinToFahrenheit(entry.TemperatureK))
	dc.Turn.SendActivity(withCategoryImage(dc.Turn.Activity.Reply(text), entry.Category))
	return nil
}

func (b *Bot) cancelDialogs(ctx context.Context, dc *dialog.Context, result *nlu.Result) error {
	if dc.CancelAll() == dialog.StatusCancelled {
		dc.Turn.SendText(msgCancelConfirmed)
	} else {
		dc.Turn.SendText(msgNothingToCancel)
	}
	return nil
}

func (b *Bot) sendHelp(ctx context.Context, dc *dialog.Context, result *nlu.Result) error {
	for _, msg := range helpMessages {
		dc.Turn.SendText(msg)
	}
	return nil
}

// withCategoryImage attaches the category illustration when one exists.
func withCategoryImage(reply *activity.Activity, category string) *activity.Activity {
	if url, ok := weather.CategoryImage(category); ok {
		reply.Attachments = append(reply.Attachments, activity.Attachment{
			ContentType: "image/png",
			ContentURL:  url,
			Name:        category,
		})
	}
	return reply
}
