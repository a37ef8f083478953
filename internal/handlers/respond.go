package handlers

import (
	"errors"
	"net/http"

	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, schemas.ErrorResponse{Error: message})
}

// writeError answers with the HTTP code of the first typed error in the chain.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var customErr customerror.CustomError
	if errors.As(err, &customErr) {
		logger.Log.Warn("request failed", zap.String("uri", r.RequestURI), zap.Error(err))
		writeMessage(w, r, customErr.GetHTTPCode(), customErr.Error())
		return
	}

	logger.Log.Error("request failed", zap.String("uri", r.RequestURI), zap.Error(err))
	writeMessage(w, r, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := render.DecodeJSON(r.Body, v); err != nil {
		logger.Log.Info("can't parse body", zap.String("uri", r.RequestURI), zap.Error(err))
		writeMessage(w, r, http.StatusBadRequest, "can't parse body")
		return false
	}
	return true
}
