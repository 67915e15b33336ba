/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	goerrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
)

type ApiError struct {
	HttpCode  int    `json:"-"`
	ErrorCode string `json:"errorCode"`
	Detail    string `json:"detail"`
}

func (err *ApiError) Error() string {
	return err.Detail
}

func AbortWithApiError(c *gin.Context, err error) {
	handleErrors(c, err)
	rsp := cvtToErrResponse(err)
	c.AbortWithStatusJSON(rsp.HttpCode, rsp)
}

func cvtToErrResponse(err error) ApiError {
	var result *ApiError
	if goerrors.As(err, &result) {
		return *result
	}
	var statusErr *errors.StatusError
	if !goerrors.As(err, &statusErr) {
		statusErr = errors.NewInternalError(err.Error())
	}
	return ApiError{
		HttpCode:  statusErr.Code,
		ErrorCode: statusErr.Reason,
		Detail:    statusErr.Message,
	}
}

func handleErrors(c *gin.Context, err error) {
	if err != nil {
		// associates the error with the request for the logging middleware
		_ = c.Error(err)
	}
}
