// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// SignupRequest is the request body for POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatRequest is the request body for POST /chatbot.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"` // BCP 47 tag
}

// MarketRequest is the request body for POST /market_price.
type MarketRequest struct {
	Crop     string `json:"crop"`
	Location string `json:"location"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// User is an authenticated identity.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ProfileResponse is returned by GET /profile.
type ProfileResponse struct {
	User *User `json:"user"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// MessageResponse is returned by signup and logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// Prediction is a plant-disease classification.
type Prediction struct {
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence"` // 0..1
}

// Weather is a current-conditions report. Values are passed through as
// the backend sends them (metric units).
type Weather struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// ChatResponse is returned by POST /chatbot.
type ChatResponse struct {
	Reply    string `json:"reply"`
	Language string `json:"language,omitempty"`
}

// MarketQuote is one crop price row.
type MarketQuote struct {
	Crop       string  `json:"crop"`
	Location   string  `json:"location"`
	MinPrice   float64 `json:"min_price"`
	ModalPrice float64 `json:"modal_price"`
	MaxPrice   float64 `json:"max_price"`
}

// MarketResponse is returned by POST /market_price.
type MarketResponse struct {
	MarketPrices []MarketQuote `json:"market_prices"`
}

// errorBody is the failure envelope every endpoint may return.
type errorBody struct {
	Error string `json:"error"`
}
