// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// MsgSelectImage is shown when Submit runs with no artifact selected.
const MsgSelectImage = "Please select an image file first."

// Predictor classifies an image.
type Predictor interface {
	Predict(ctx context.Context, filename string, data []byte) (*api.Prediction, error)
}

// PredictRequest is the upload a successful Begin asks the caller to send.
type PredictRequest struct {
	Ticket   Ticket
	Filename string
	Data     []byte
}

// Prediction is the plant-disease panel.
type Prediction struct {
	State[api.Prediction]

	path string
}

// Path returns the selected image path.
func (p *Prediction) Path() string { return p.path }

// Select stores the image path and clears the previous outcome.
// A request still in flight for an earlier image is abandoned.
func (p *Prediction) Select(path string) {
	p.path = path
	p.abandon()
}

// Begin validates the selection and reads the image. On success the panel
// is pending and the returned request should be sent.
func (p *Prediction) Begin() (PredictRequest, error) {
	if util.IsBlank(p.path) {
		return PredictRequest{}, p.reject(MsgSelectImage)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return PredictRequest{}, p.reject("Could not read image file " + filepath.Base(p.path) + ".")
	}

	return PredictRequest{
		Ticket:   p.begin(),
		Filename: filepath.Base(p.path),
		Data:     data,
	}, nil
}

// Finish applies the outcome of the request issued with t. It reports
// whether the panel changed.
func (p *Prediction) Finish(t Ticket, res *api.Prediction, err error) bool {
	if err != nil {
		return p.resolve(t, nil, api.Describe(err, api.FallbackPrediction))
	}
	return p.resolve(t, res, "")
}

// Submit runs the whole request synchronously.
func (p *Prediction) Submit(ctx context.Context, f Predictor) error {
	req, err := p.Begin()
	if err != nil {
		return err
	}
	res, err := f.Predict(ctx, req.Filename, req.Data)
	p.Finish(req.Ticket, res, err)
	return err
}

// Confidence renders the result's confidence as a percentage ("87.34%"),
// or "" with no result.
func (p *Prediction) Confidence() string {
	if p.result == nil {
		return ""
	}
	return util.Percent(p.result.Confidence)
}
