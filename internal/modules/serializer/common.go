package serializer

import (
	"fmt"
	"net/http"

	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger sets the logger used to report server-side errors.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// NotFoundErr
func NotFoundErr(msg string, err error) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, err)
}

// UpstreamErr
func UpstreamErr(msg string, err error) Response {
	if msg == "" {
		msg = "upstream returned an unusable response"
	}
	return Err(http.StatusBadGateway, msg, err)
}

// FromError maps a service error onto its HTTP status and response body.
func FromError(err error) (int, Response) {
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest, ParamErr(err.Error(), err)
	case apperr.IsNotFound(err):
		return http.StatusNotFound, NotFoundErr(err.Error(), err)
	case apperr.IsMalformedPlan(err):
		log.Sugar().Warnw("malformed upstream plan", "err", err)
		return http.StatusBadGateway, UpstreamErr("", err)
	default:
		log.Sugar().Errorw("request failed", "err", err)
		return http.StatusInternalServerError, DBErr("", err)
	}
}
