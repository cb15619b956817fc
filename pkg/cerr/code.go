package cerr

import (
	"net/http"
	"strconv"

	"connectrpc.com/connect"
)

// Code classifies an Error. The values match the connect/gRPC codes.
type Code int

const (
	OK                 = Code(0)
	Canceled           = Code(connect.CodeCanceled)
	Unknown            = Code(connect.CodeUnknown)
	InvalidArgument    = Code(connect.CodeInvalidArgument)
	NotFound           = Code(connect.CodeNotFound)
	AlreadyExists      = Code(connect.CodeAlreadyExists)
	ResourceExhausted  = Code(connect.CodeResourceExhausted)
	FailedPrecondition = Code(connect.CodeFailedPrecondition)
	Internal           = Code(connect.CodeInternal)
	Unavailable        = Code(connect.CodeUnavailable)
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	OK:                 {"OK", http.StatusOK},
	Canceled:           {"Canceled", 499},
	Unknown:            {"Unknown", http.StatusInternalServerError},
	InvalidArgument:    {"InvalidArgument", http.StatusBadRequest},
	NotFound:           {"NotFound", http.StatusNotFound},
	AlreadyExists:      {"AlreadyExists", http.StatusConflict},
	ResourceExhausted:  {"ResourceExhausted", http.StatusInsufficientStorage},
	FailedPrecondition: {"FailedPrecondition", http.StatusPreconditionFailed},
	Internal:           {"Internal", http.StatusInternalServerError},
	Unavailable:        {"Unavailable", http.StatusServiceUnavailable},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// ConnectCode is used for log level selection; unknown codes map to
// connect.CodeUnknown.
func (c Code) ConnectCode() connect.Code {
	if c == OK {
		return 0
	}
	if _, ok := codes[c]; !ok {
		return connect.CodeUnknown
	}
	return connect.Code(c)
}

func (c Code) HTTPCode() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
