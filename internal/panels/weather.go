// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"context"
	"strings"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// MsgEnterCity is shown when Submit runs with a blank city.
const MsgEnterCity = "Please enter a city name."

// WeatherFetcher looks up current conditions.
type WeatherFetcher interface {
	Weather(ctx context.Context, city string) (*api.Weather, error)
}

// Weather is the weather lookup panel.
type Weather struct {
	State[api.Weather]

	city string
}

// City returns the input.
func (w *Weather) City() string { return w.city }

// SetCity stores the input and clears the previous outcome.
func (w *Weather) SetCity(city string) {
	w.city = city
	w.clear()
}

// Begin validates the input. On success the panel is pending and the
// returned city should be looked up with the ticket.
func (w *Weather) Begin() (Ticket, string, error) {
	if util.IsBlank(w.city) {
		return 0, "", w.reject(MsgEnterCity)
	}
	return w.begin(), strings.TrimSpace(w.city), nil
}

// Finish applies the outcome of the request issued with t.
func (w *Weather) Finish(t Ticket, res *api.Weather, err error) bool {
	if err != nil {
		return w.resolve(t, nil, api.Describe(err, api.FallbackWeather))
	}
	return w.resolve(t, res, "")
}

// Submit runs the whole request synchronously.
func (w *Weather) Submit(ctx context.Context, f WeatherFetcher) error {
	t, city, err := w.Begin()
	if err != nil {
		return err
	}
	res, err := f.Weather(ctx, city)
	w.Finish(t, res, err)
	return err
}

// Description returns the result's description with its first letter
// upper-cased ("clear sky" -> "Clear sky").
func (w *Weather) Description() string {
	if w.result == nil {
		return ""
	}
	return util.UpperFirst(w.result.Description)
}
