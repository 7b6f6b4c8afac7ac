package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"clipcap/internal/protocol"
)

// Ping verifies that the worker is responsive.
func (b *Bridge) Ping(ctx context.Context) error {
	_, err := b.Call(ctx, protocol.MethodPing, struct{}{}, nil)
	return err
}

// GenerateCaptions runs the full captioning pipeline for one video.
func (b *Bridge) GenerateCaptions(ctx context.Context, params protocol.GenerateCaptionsParams, onProgress func(protocol.ProgressUpdate)) (*protocol.GenerateCaptionsResult, error) {
	raw, err := b.Call(ctx, protocol.MethodGenerateCaptions, params, onProgress)
	if err != nil {
		return nil, err
	}
	var result protocol.GenerateCaptionsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode generateCaptions result: %w", err)
	}
	return &result, nil
}

// DownloadModel fetches a whisper model, reporting download progress.
func (b *Bridge) DownloadModel(ctx context.Context, model string, onProgress func(protocol.ProgressUpdate)) (*protocol.DownloadModelResult, error) {
	raw, err := b.Call(ctx, protocol.MethodDownloadModel, protocol.DownloadModelParams{Model: model}, onProgress)
	if err != nil {
		return nil, err
	}
	var result protocol.DownloadModelResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode downloadModel result: %w", err)
	}
	return &result, nil
}

// CheckModelExists reports whether the named model is present on disk.
// The worker takes the bare model name as its params value.
func (b *Bridge) CheckModelExists(ctx context.Context, model string) (bool, error) {
	raw, err := b.Call(ctx, protocol.MethodCheckModelExists, model, nil)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := json.Unmarshal(raw, &exists); err != nil {
		return false, fmt.Errorf("decode checkModelExists result: %w", err)
	}
	return exists, nil
}

// DeleteModel removes a downloaded whisper model.
func (b *Bridge) DeleteModel(ctx context.Context, model string) (*protocol.DeleteModelResult, error) {
	raw, err := b.Call(ctx, protocol.MethodDeleteModel, protocol.DeleteModelParams{Model: model}, nil)
	if err != nil {
		return nil, err
	}
	var result protocol.DeleteModelResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode deleteModel result: %w", err)
	}
	return &result, nil
}
