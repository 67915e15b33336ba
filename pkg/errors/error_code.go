/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const PanoPrefix = "Pano."

/*
   5-digit Error Code Convention: [xx][yyy]
   [xx] Business ID (00–99), used to distinguish errors from different business interfaces.
   00: General errors
   01: Render-related errors
   02: Storage-related errors
   [yyy] Error code range (000–999)
*/

// public: 00xxx
const (
	InternalError   = PanoPrefix + "00001"
	BadRequest      = PanoPrefix + "00002"
	NotFound        = PanoPrefix + "00003"
	TooManyRequests = PanoPrefix + "00004"
)

// render: 01xxx
const (
	ConfigInvalid = PanoPrefix + "01001"
	AssetMissing  = PanoPrefix + "01002"
	UploadFailed  = PanoPrefix + "01003"
)

// storage: 02xxx
const (
	ObjectNotFound = PanoPrefix + "02001"
)

// StatusError is a service error bound to an HTTP status and a coded reason.
type StatusError struct {
	Code    int
	Reason  string
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ReasonForError returns the coded reason of err, or "" for foreign errors.
func ReasonForError(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Reason
	}
	return ""
}

func StatusForError(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return http.StatusInternalServerError
}

func IsBadRequest(err error) bool {
	return ReasonForError(err) == BadRequest
}

func IsInternal(err error) bool {
	return ReasonForError(err) == InternalError
}

func IsTooManyRequests(err error) bool {
	return ReasonForError(err) == TooManyRequests
}

func IsConfigInvalid(err error) bool {
	return ReasonForError(err) == ConfigInvalid
}

func IsAssetMissing(err error) bool {
	return ReasonForError(err) == AssetMissing
}

func IsUploadFailed(err error) bool {
	return ReasonForError(err) == UploadFailed
}

func IsNotFound(err error) bool {
	reason := ReasonForError(err)
	return reason == NotFound || reason == ObjectNotFound
}

func IgnoreNotFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func NewBadRequest(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusBadRequest,
		Reason:  BadRequest,
		Message: fmt.Sprintf("Bad request. %s", message),
	}
}

func NewInternalError(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}
}

func NewNotFound(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusNotFound,
		Reason:  NotFound,
		Message: message,
	}
}

func NewObjectNotFound(key string) *StatusError {
	return &StatusError{
		Code:    http.StatusNotFound,
		Reason:  ObjectNotFound,
		Message: fmt.Sprintf("object %s not found", key),
	}
}

func NewTooManyRequests(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusTooManyRequests,
		Reason:  TooManyRequests,
		Message: message,
	}
}

func NewConfigInvalid(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ConfigInvalid,
		Message: message,
	}
}

func NewAssetMissing(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusNotFound,
		Reason:  AssetMissing,
		Message: message,
	}
}

func NewUploadFailed(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusInternalServerError,
		Reason:  UploadFailed,
		Message: message,
	}
}
