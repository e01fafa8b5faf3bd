package usecase

import "errors"

// ErrInvalidRequest は必須パラメータの欠落や不正な値を示します（HTTP 400）。
var ErrInvalidRequest = errors.New("invalid request")
