/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/impostor/game"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// logWriter adapts logf for the game manager's logger.
type logWriter struct {
	cfg *Config
}

func (l logWriter) Write(p []byte) (int, error) {
	logf(l.cfg, "%s", strings.TrimSuffix(string(p), "\n"))

	return len(p), nil
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{height:100%;margin:0;font-family:sans-serif;background:#111;color:#eee;}`)
	htmlBody.WriteString(`main{display:flex;flex-direction:column;align-items:center;justify-content:center;min-height:100%;text-align:center;padding:1em;}`)
	htmlBody.WriteString(`a{color:inherit;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><main><h1>%s</h1>%s</main></body></html>", html.EscapeString(title), body))

	return htmlBody.String()
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps game errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNameInvalid),
		errors.Is(err, game.ErrPolicyInvalid),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNameDuplicate),
		errors.Is(err, game.ErrRosterFull),
		errors.Is(err, game.ErrSessionActive),
		errors.Is(err, game.ErrNoActiveSession):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientPlayers):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func serveError(cfg *Config, w http.ResponseWriter, r *http.Request, err error, errs chan<- error) {
	status := statusFor(err)

	logf(cfg, "ERROR: %s %s from %s: %v", r.Method, r.URL.Path, realIP(r), err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}

	writeJSON(cfg, w, status, errorResponse{Error: msg}, errs)
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) int {
	data, err := json.Marshal(v)
	if err != nil {
		errs <- err
		http.Error(w, "internal error", http.StatusInternalServerError)

		return 0
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	written, err := w.Write(append(data, '\n'))
	if err != nil {
		errs <- err
	}

	return written
}
