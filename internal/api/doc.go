// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the AGRINOVA backend.
//
// The backend exposes session authentication, plant-disease prediction,
// weather lookup, a chatbot and sample market prices. Each endpoint is a
// typed method on Client.
//
// # Key Types
//
//   - Client: HTTP client with a cookie jar for credential-bearing calls
//   - ClientError: typed failure (rejected, unreachable, timeout, invalid response)
//   - User, Prediction, Weather, MarketQuote: decoded response bodies
//
// # Credentials
//
// The backend keeps its session in a cookie. Profile, Login, Logout and
// Chat send and store cookies through ClientConfig.Jar; Signup, Predict,
// Weather and MarketPrices never carry a cookie.
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{
//	    BaseURL: "http://127.0.0.1:5000",
//	    Jar:     jar,
//	})
//	user, err := client.Login(ctx, "asha", "secret")
//	if err != nil {
//	    fmt.Println(api.Describe(err, api.FallbackAuth))
//	}
package api
