// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"context"
	"strings"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

const (
	// MsgEnterCrop is shown when Submit runs with a blank crop.
	MsgEnterCrop = "Please enter a crop name."

	// MsgNoPrices is shown for a successful lookup with no rows.
	MsgNoPrices = "No market prices found."
)

// PriceFetcher looks up market prices.
type PriceFetcher interface {
	MarketPrices(ctx context.Context, crop, location string) ([]api.MarketQuote, error)
}

// Market is the crop price panel.
type Market struct {
	State[[]api.MarketQuote]

	crop     string
	location string
}

// Crop returns the crop input.
func (m *Market) Crop() string { return m.crop }

// Location returns the location input.
func (m *Market) Location() string { return m.location }

// SetCrop stores the crop input and clears the previous outcome.
func (m *Market) SetCrop(crop string) {
	m.crop = crop
	m.clear()
}

// SetLocation stores the optional location and clears the previous outcome.
func (m *Market) SetLocation(location string) {
	m.location = location
	m.clear()
}

// MarketQuery is what a successful Begin asks the caller to look up.
type MarketQuery struct {
	Ticket   Ticket
	Crop     string
	Location string
}

// Begin validates the inputs and marks the panel pending.
func (m *Market) Begin() (MarketQuery, error) {
	if util.IsBlank(m.crop) {
		return MarketQuery{}, m.reject(MsgEnterCrop)
	}
	return MarketQuery{
		Ticket:   m.begin(),
		Crop:     strings.TrimSpace(m.crop),
		Location: strings.TrimSpace(m.location),
	}, nil
}

// Finish applies the outcome of the request issued with t.
func (m *Market) Finish(t Ticket, quotes []api.MarketQuote, err error) bool {
	if err != nil {
		return m.resolve(t, nil, api.Describe(err, api.FallbackMarket))
	}
	if quotes == nil {
		quotes = []api.MarketQuote{}
	}
	return m.resolve(t, &quotes, "")
}

// Submit runs the whole request synchronously.
func (m *Market) Submit(ctx context.Context, f PriceFetcher) error {
	q, err := m.Begin()
	if err != nil {
		return err
	}
	quotes, err := f.MarketPrices(ctx, q.Crop, q.Location)
	m.Finish(q.Ticket, quotes, err)
	return err
}

// Quotes returns the result rows, or nil with no result.
func (m *Market) Quotes() []api.MarketQuote {
	if m.result == nil {
		return nil
	}
	return *m.result
}
