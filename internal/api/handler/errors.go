package handler

import "errors"

// ErrBadRequest 请求参数非法
var ErrBadRequest = errors.New("请求参数非法")
