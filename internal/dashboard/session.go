package dashboard

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionAddressKey = "address"

var ErrNotConnected = errors.New("wallet is not connected")

// connectedAddress returns the wallet address stored in the session, or "".
func connectedAddress(c *gin.Context) string {
	addr, _ := sessions.Default(c).Get(sessionAddressKey).(string)
	return addr
}

func setConnectedAddress(c *gin.Context, address string) error {
	s := sessions.Default(c)
	s.Set(sessionAddressKey, address)

	return s.Save()
}

func clearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()

	return s.Save()
}

// addFlash queues a message shown on the next rendered page.
func addFlash(c *gin.Context, msg string) {
	s := sessions.Default(c)
	s.AddFlash(msg)
	_ = s.Save()
}

// takeFlashes returns and clears the queued messages.
func takeFlashes(c *gin.Context) []string {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save()

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}
