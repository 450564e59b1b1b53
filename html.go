/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/impostor/game"
	"github.com/julienschmidt/httprouter"
)

// serveHomePage lists the roster. While a session is running every name
// links to that player's card.
func serveHomePage(cfg *Config, a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		st := a.snapshot()

		var body strings.Builder
		body.WriteString(fmt.Sprintf("<p>%d players, policy %s</p><ol>", len(st.Players), html.EscapeString(st.Policy.String())))
		for _, p := range st.Players {
			name := html.EscapeString(p.Name)
			if st.State == game.StateActive {
				body.WriteString(fmt.Sprintf(`<li><a href="%s/reveal/%d">%s</a></li>`, cfg.prefix, p.ID, name))
			} else {
				body.WriteString("<li>" + name + "</li>")
			}
		}
		body.WriteString("</ol>")

		if len(st.Players) == 0 {
			body.WriteString("<p>Add players to get started.</p>")
		}

		title := "Impostor"
		if st.State == game.StateActive {
			title = "Impostor - pick your name"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := io.WriteString(w, newPage(title, body.String()))
		if err != nil {
			errs <- err

			return
		}

		served(cfg, r, "Home page", written, startTime)
	}
}

// htmlRevealSink renders a card as a full page.
type htmlRevealSink struct {
	cfg  *Config
	page string
}

func (s *htmlRevealSink) RenderReveal(title, body string) {
	s.page = newPage(title, fmt.Sprintf(`<p>%s</p><p><a href="%s/">Done</a></p>`, html.EscapeString(body), s.cfg.prefix))
}

func serveRevealPage(a *app, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, err := strconv.Atoi(ps.ByName("id"))
		if err != nil {
			http.NotFound(w, r)

			return
		}

		sink := &htmlRevealSink{cfg: a.cfg}
		if err := a.locked(func() error { return a.games.ShowRole(id, sink) }); err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(a.cfg, w)
			w.WriteHeader(statusFor(err))
			io.WriteString(w, newPage("No card", html.EscapeString(err.Error())))

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(a.cfg, w)

		written, err := io.WriteString(w, sink.page)
		if err != nil {
			errs <- err

			return
		}

		served(a.cfg, r, "Reveal page for player "+strconv.Itoa(id), written, startTime)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
