// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// panelFailure turns a panel Submit error into a command error carrying the
// text the panel settled on.
func panelFailure(err error, text string) error {
	var ve *panels.ValidationError
	if errors.As(err, &ve) {
		return &UsageError{Message: ve.Message}
	}
	if text == "" {
		text = err.Error()
	}
	return &failure{text: text, err: err}
}

// =============================================================================
// PREDICT
// =============================================================================

func newPredictCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <image>",
		Short: "Identify plant disease from a leaf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &panels.Prediction{}
			p.Select(args[0])
			if err := p.Submit(cmd.Context(), envOf().Client); err != nil {
				return panelFailure(err, p.Err())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, field("Prediction", p.Result().Label))
			fmt.Fprintln(out, field("Confidence", p.Confidence()))
			return nil
		},
	}
}

// =============================================================================
// WEATHER
// =============================================================================

func newWeatherCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city...>",
		Short: "Show current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &panels.Weather{}
			w.SetCity(strings.Join(args, " "))
			if err := w.Submit(cmd.Context(), envOf().Client); err != nil {
				return panelFailure(err, w.Err())
			}

			r := w.Result()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render(r.City))
			fmt.Fprintln(out, field("Temperature", util.FloatToStringPrec(r.Temperature, 1)+" °C"))
			fmt.Fprintln(out, field("Conditions", w.Description()))
			fmt.Fprintln(out, field("Humidity", util.FloatToStringPrec(r.Humidity, 0)+"%"))
			fmt.Fprintln(out, field("Wind", util.FloatToStringPrec(r.WindSpeed, 1)+" m/s"))
			return nil
		},
	}
}

// =============================================================================
// MARKET
// =============================================================================

func newMarketCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "market <crop> [location]",
		Short: "Show market prices for a crop",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &panels.Market{}
			m.SetCrop(args[0])
			if len(args) == 2 {
				m.SetLocation(args[1])
			}
			if err := m.Submit(cmd.Context(), envOf().Client); err != nil {
				return panelFailure(err, m.Err())
			}

			out := cmd.OutOrStdout()
			quotes := m.Quotes()
			if len(quotes) == 0 {
				fmt.Fprintln(out, panels.MsgNoPrices)
				return nil
			}
			writeQuotes(out, quotes)
			return nil
		},
	}
}

// writeQuotes prints one aligned row per quote.
func writeQuotes(out io.Writer, quotes []api.MarketQuote) {
	const cropW, locW, numW = 12, 16, 10

	header := util.PadRight("Crop", cropW) + util.PadRight("Location", locW) +
		util.PadRight("Min", numW) + util.PadRight("Modal", numW) + "Max"
	fmt.Fprintln(out, DimStyle.Render(header))
	fmt.Fprintln(out, separator(cropW+locW+2*numW+8))

	for _, q := range quotes {
		fmt.Fprintln(out,
			util.PadRight(util.TruncateWidth(q.Crop, cropW-1), cropW)+
				util.PadRight(util.TruncateWidth(q.Location, locW-1), locW)+
				util.PadRight(util.FloatToStringPrec(q.MinPrice, 2), numW)+
				util.PadRight(util.FloatToStringPrec(q.ModalPrice, 2), numW)+
				util.FloatToStringPrec(q.MaxPrice, 2))
	}
}
