package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/tournament-finder/internal/feed"
	"github.com/trentd187/tournament-finder/internal/models"
)

// keepAliveInterval is how often an idle stream sends an SSE comment so proxies keep it open.
const keepAliveInterval = 15 * time.Second

// Stream returns a handler for GET /stream?status=.
// It answers with a Server-Sent Events stream of tournament changes. With ?status=approved
// only changes that leave a tournament approved are sent; without it, every change is.
func (h *TournamentHandlers) Stream() fiber.Handler {
	return func(c *fiber.Ctx) error {
		topic := c.Query("status", feed.AllTopic)
		if topic != feed.AllTopic && !models.TournamentStatus(topic).Valid() {
			return badRequest(c, msgInvalidStatus)
		}

		client := feed.NewClient(topic)
		if !h.hub.Register(client) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "feed is shutting down"})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		// The stream writer runs after this handler returns, on fasthttp's goroutine,
		// and ends when the hub closes client.Send or the client goes away (Flush fails).
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer h.hub.Unregister(client)

			ticker := time.NewTicker(keepAliveInterval)
			defer ticker.Stop()

			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					fmt.Fprintf(w, "event: tournament\ndata: %s\n\n", msg)
				case <-ticker.C:
					fmt.Fprint(w, ": keep-alive\n\n")
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	}
}
