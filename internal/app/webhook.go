package app

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const webhookQueueSize = 128

// StartWebhook registers the bot webhook with Telegram and serves updates
// over HTTP instead of long polling. The secret is part of the path, so
// only Telegram (which got the full URL) can post updates.
func (b *Bot) StartWebhook(ctx context.Context, listen, publicURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(fmt.Sprintf("%s/webhook/%s", publicURL, secret))
	if err != nil {
		return fmt.Errorf("could not build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("could not register webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("could not fetch webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		log.Printf("WARN telegram last webhook error: %s", info.LastErrorMessage)
	}

	updates := make(chan tgbotapi.Update, webhookQueueSize)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/webhook/{secret}", func(w http.ResponseWriter, req *http.Request) {
		if subtle.ConstantTimeCompare([]byte(chi.URLParam(req, "secret")), []byte(secret)) != 1 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		update, err := b.api.HandleUpdate(req)
		if err != nil {
			log.Printf("WARN bad webhook payload: %s", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		select {
		case updates <- *update:
		default:
			log.Printf("WARN webhook queue is full, dropping update %d", update.UpdateID)
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO webhook server listening on %s", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go b.Run(ctx, updates)

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN webhook server shutdown: %s", err)
	}
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("WARN could not deregister webhook: %s", err)
	}
	return nil
}
