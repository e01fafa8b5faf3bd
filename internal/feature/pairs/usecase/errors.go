package usecase

import "errors"

var (
	// ErrInvalidRequest は必須パラメータの欠落や不正な値を示します（HTTP 400）。
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownProvider は provider パラメータが既知のプロバイダでないことを示します。
	ErrUnknownProvider = errors.New("unknown provider")
)
