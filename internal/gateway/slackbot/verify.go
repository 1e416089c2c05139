package slackbot

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Verify rejects requests that are not signed with the app's signing secret.
func Verify(signingSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := make(http.Header)
		for key, values := range c.GetReqHeaders() {
			for _, value := range values {
				header.Add(key, value)
			}
		}

		verifier, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("Unsigned request")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		}
		if _, err = verifier.Write(c.Body()); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		}
		if err = verifier.Ensure(); err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("Signature mismatch")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		}
		return c.Next()
	}
}
