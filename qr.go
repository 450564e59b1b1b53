/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

// baseURL derives the app's public URL from the request, respecting TLS and
// X-Forwarded-Proto if present.
func baseURL(cfg *Config, r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/"
}

// serveQR generates a PNG QR code pointing at the app, so the operator can
// open the roster on another screen.
func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		png, err := qrcode.Encode(baseURL(cfg, r), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			errs <- err

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		served(cfg, r, "QR code", written, startTime)
	}
}

// printQR writes a terminal-friendly QR code for url.
func printQR(w io.Writer, url string) {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		fmt.Fprintf(w, "%s | ERROR: %v\n", time.Now().Format(logDate), err)
		return
	}

	fmt.Fprintln(w, strings.TrimRight(qr.ToSmallString(false), "\n"))
	fmt.Fprintln(w, url)
}
