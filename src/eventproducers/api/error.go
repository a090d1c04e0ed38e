package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
)

type ErrorResponse struct {
	Type  eventmodels.ErrorKind `json:"type"`
	Error string                `json:"error"`
}

func setResponse[T any](obj T, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	return json.NewEncoder(w).Encode(obj)
}

func setErrorResponse(kind eventmodels.ErrorKind, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Type:  kind,
		Error: err.Error(),
	}

	return json.NewEncoder(w).Encode(resp)
}

// setWebError writes err with the status code its kind maps to.
func setWebError(caller string, err error, w http.ResponseWriter) {
	webErr := eventmodels.WebErrorFrom(err)
	if webErr.StatusCode >= http.StatusInternalServerError {
		log.Errorf("%s: %v", caller, err)
	} else {
		log.Warnf("%s: %v", caller, err)
	}

	if respErr := setErrorResponse(webErr.Kind, webErr.StatusCode, webErr.Cause, w); respErr != nil {
		log.Errorf("%s: failed to set error response: %v", caller, respErr)
	}
}
